// package services defines the interfaces the CLI and task layers use to reach music providers
package services

import (
	"context"

	"github.com/desertthunder/tessera/internal/models"
	"golang.org/x/oauth2"
)

// Service is a music provider that can list and export playlists.
type Service interface {
	// Authenticate accepts either an "access_token" or an "auth_code" credential.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the name of the service.
	Name() string
}

// OAuthService extends [Service] with the authorization code flow.
type OAuthService interface {
	Service
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// LibraryService exposes the user's liked songs one page at a time.
type LibraryService interface {
	SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error)
}

// ImageFetcher downloads raw image bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var (
	_ OAuthService   = (*SpotifyService)(nil)
	_ LibraryService = (*SpotifyService)(nil)
	_ ImageFetcher   = (*ImageService)(nil)
)
