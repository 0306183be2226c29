package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/tessera/internal/shared"
)

const maxImageBytes = 10 << 20

// ImageService downloads album art over plain HTTP(S).
type ImageService struct {
	client *http.Client
}

// NewImageService creates an ImageService. A nil client gets a 30s timeout.
func NewImageService(client *http.Client) *ImageService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageService{client: client}
}

// Fetch downloads url and returns the body, capped at 10 MiB.
func (s *ImageService) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image url", shared.ErrInvalidArgument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image download status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", shared.ErrInvalidInput, maxImageBytes)
	}
	return data, nil
}
