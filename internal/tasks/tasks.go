package tasks

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tessera/internal/collage"
	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/services"
	"github.com/desertthunder/tessera/internal/shared"
)

// CollageRecorder persists generated collages. [repositories.CollageRepository] satisfies it.
type CollageRecorder interface {
	Create(c *models.Collage) error
}

// CollageOpts configures one collage run.
type CollageOpts struct {
	Width     int
	Height    int
	HueShift  float64
	OutputDir string
	Unique    bool // skip tracks whose art URL was already used
}

// CollageResult describes a generated collage.
type CollageResult struct {
	Collage *models.Collage
	Layout  collage.Layout
	Images  int // images that decoded
	Skipped int // art URLs that failed to download or decode
	Size    int64
}

// CollageEngine turns a track snapshot into an album-art collage on disk.
type CollageEngine struct {
	fetcher  services.ImageFetcher
	recorder CollageRecorder
	logger   *log.Logger
}

// NewCollageEngine creates an engine. recorder may be nil to skip persistence.
func NewCollageEngine(fetcher services.ImageFetcher, recorder CollageRecorder, logger *log.Logger) *CollageEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &CollageEngine{
		fetcher:  fetcher,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "collage"),
	}
}

// ArtURLs lists the art URL of every track that has one, in catalog order.
func ArtURLs(tracks []models.Track, unique bool) []string {
	seen := make(map[string]struct{}, len(tracks))
	urls := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ArtURL == "" {
			continue
		}
		if unique {
			if _, ok := seen[t.ArtURL]; ok {
				continue
			}
			seen[t.ArtURL] = struct{}{}
		}
		urls = append(urls, t.ArtURL)
	}
	return urls
}

// Generate downloads album art one image at a time, composes the collage and writes it
// as collage-<uuid>.png under opts.OutputDir.
//
// Images that fail to download or decode are skipped. When none decode the result is
// [shared.ErrNoImages] and no file is written.
func (e *CollageEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track, opts CollageOpts) (*CollageResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: image fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: collage size %dx%d", shared.ErrInvalidArgument, opts.Width, opts.Height)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = shared.DefaultOutputDir()
	}

	images, skipped, err := e.download(ctx, progress, ArtURLs(tracks, opts.Unique))
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, shared.ErrNoImages
	}

	sendProgress(progress, composingUpdate(len(images)))
	canvas, layout, err := collage.Compose(images, opts.Width, opts.Height, opts.HueShift)
	if err != nil {
		return nil, err
	}

	id := shared.GenerateID()
	path := filepath.Join(opts.OutputDir, fmt.Sprintf("collage-%s.png", id))
	size, err := writePNG(path, canvas)
	if err != nil {
		return nil, err
	}

	record := models.NewCollage(path, layout.Width, layout.Height, len(layout.Placements), opts.HueShift)
	record.SetID(id)
	if e.recorder != nil {
		if err := e.recorder.Create(record); err != nil {
			e.logger.Warn("failed to record collage", "path", path, "error", err)
		}
	}

	e.logger.Info("collage saved", "path", path, "tiles", len(layout.Placements), "skipped", skipped)
	sendProgress(progress, savedCollageUpdate(record))

	return &CollageResult{
		Collage: record,
		Layout:  layout,
		Images:  len(images),
		Skipped: skipped,
		Size:    size,
	}, nil
}

func (e *CollageEngine) download(ctx context.Context, progress chan<- ProgressUpdate, urls []string) ([]image.Image, int, error) {
	images := make([]image.Image, 0, len(urls))
	skipped := 0
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("collage cancelled after %d images: %w", i, err)
		}

		data, err := e.fetcher.Fetch(ctx, url)
		if err == nil {
			var img image.Image
			if img, err = collage.Decode(data); err == nil {
				images = append(images, img)
			}
		}
		if err != nil {
			skipped++
			e.logger.Debug("skipping album art", "url", url, "error", err)
		}
		sendProgress(progress, loadingImagesUpdate(i+1, len(urls)))
	}
	return images, skipped, nil
}

func writePNG(path string, img image.Image) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create collage file: %w", err)
	}
	if err := collage.EncodePNG(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close collage file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat collage file: %w", err)
	}
	return info.Size(), nil
}
