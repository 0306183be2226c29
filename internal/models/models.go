// package models defines the data model for the liked-songs catalog and collage generator
package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/tessera/internal/shared"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track is a liked song.
//
// Artists holds every artist name joined with ", ". ArtURL is the smallest album image, or empty.
type Track struct {
	Title   string `json:"title"`
	Artists string `json:"artists"`
	ArtURL  string `json:"art_url"`
	PlayURI string `json:"play_uri"`
}

// Playlist is a user playlist as listed by /me/playlists.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	ImageURL   string `json:"image_url,omitempty"`
	TrackCount int    `json:"track_count"`
}

// PlaylistExport is a playlist with every track resolved.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// CachedCatalog is the persisted liked-songs list.
type CachedCatalog struct {
	Tracks    []Track   `json:"tracks"`
	Total     int       `json:"total"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Validate reports whether the blob is internally consistent.
func (c *CachedCatalog) Validate() error {
	if c.Total < 0 {
		return fmt.Errorf("%w: negative total %d", shared.ErrInvalidCache, c.Total)
	}
	if len(c.Tracks) > c.Total {
		return fmt.Errorf("%w: %d tracks exceeds total %d", shared.ErrInvalidCache, len(c.Tracks), c.Total)
	}
	if c.FetchedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", shared.ErrInvalidCache)
	}
	return nil
}

// Expired is true once more than ttl has passed since FetchedAt.
func (c *CachedCatalog) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.FetchedAt) > ttl
}

// Complete is true when every track the server reported is present.
func (c *CachedCatalog) Complete() bool {
	return len(c.Tracks) >= c.Total
}

const (
	MinPageSize     = 10
	MaxPageSize     = 1000
	DefaultPageSize = 50
	// PageLimit is the largest page the saved-tracks endpoint returns.
	PageLimit = 50
)

// ClampPageSize bounds n to [MinPageSize, MaxPageSize].
func ClampPageSize(n int) int {
	return min(max(n, MinPageSize), MaxPageSize)
}

// LoadState tracks progress of the incremental liked-songs load.
//
// Total is nil until the first page or cache hit reports it. A PageSize of
// [MaxPageSize] means "load everything remaining".
type LoadState struct {
	LoadedCount int  `json:"loaded_count"`
	Total       *int `json:"total,omitempty"`
	IsLoading   bool `json:"is_loading"`
	PageSize    int  `json:"page_size"`
}

// Complete is true when the total is known and every track is loaded.
func (s LoadState) Complete() bool {
	return s.Total != nil && s.LoadedCount >= *s.Total
}

// Unbounded is true when the page size asks for all remaining tracks.
func (s LoadState) Unbounded() bool {
	return s.PageSize >= MaxPageSize
}

// Collage records a generated collage image.
type Collage struct {
	id        string
	path      string
	width     int
	height    int
	tiles     int
	hueShift  float64
	createdAt time.Time
}

// NewCollage creates a collage record. The ID is assigned by the repository on create.
func NewCollage(path string, width, height, tiles int, hueShift float64) *Collage {
	return &Collage{
		path:      path,
		width:     width,
		height:    height,
		tiles:     tiles,
		hueShift:  hueShift,
		createdAt: time.Now(),
	}
}

// RestoreCollage rebuilds a collage from stored columns.
func RestoreCollage(id, path string, width, height, tiles int, hueShift float64, createdAt time.Time) *Collage {
	return &Collage{id: id, path: path, width: width, height: height, tiles: tiles, hueShift: hueShift, createdAt: createdAt}
}

func (c *Collage) ID() string           { return c.id }
func (c *Collage) SetID(id string)      { c.id = id }
func (c *Collage) Path() string         { return c.path }
func (c *Collage) SetPath(p string)     { c.path = p }
func (c *Collage) Width() int           { return c.width }
func (c *Collage) Height() int          { return c.height }
func (c *Collage) Tiles() int           { return c.tiles }
func (c *Collage) HueShift() float64    { return c.hueShift }
func (c *Collage) CreatedAt() time.Time { return c.createdAt }
func (c *Collage) UpdatedAt() time.Time { return c.createdAt }

func (c *Collage) Validate() error {
	if c.path == "" {
		return fmt.Errorf("%w: collage path is required", shared.ErrInvalidInput)
	}
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("%w: collage dimensions must be positive, got %dx%d", shared.ErrInvalidInput, c.width, c.height)
	}
	if c.tiles <= 0 {
		return fmt.Errorf("%w: collage must have at least one tile", shared.ErrInvalidInput)
	}
	return nil
}
