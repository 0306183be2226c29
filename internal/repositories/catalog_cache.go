package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
)

const (
	CatalogKey = "spotify_tracks"
	CatalogTTL = 24 * time.Hour
)

// CatalogCache is the single-slot liked-songs cache.
//
// Entries older than the TTL, unreadable, or failing [models.CachedCatalog.Validate]
// are evicted on read and reported as a miss.
type CatalogCache struct {
	store KVStore
	ttl   time.Duration
	clock shared.Clock
}

// NewCatalogCache creates a cache over store. A zero ttl uses [CatalogTTL] and a nil clock uses the wall clock.
func NewCatalogCache(store KVStore, ttl time.Duration, clock shared.Clock) *CatalogCache {
	if ttl <= 0 {
		ttl = CatalogTTL
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &CatalogCache{store: store, ttl: ttl, clock: clock}
}

// Load returns the cached catalog, or nil on a miss.
func (c *CatalogCache) Load() (*models.CachedCatalog, error) {
	raw, ok, err := c.store.Get(CatalogKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var catalog models.CachedCatalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		return nil, c.Clear()
	}

	if err := catalog.Validate(); err != nil {
		return nil, c.Clear()
	}

	if catalog.Expired(c.clock.Now(), c.ttl) {
		return nil, c.Clear()
	}

	return &catalog, nil
}

// Save stores the complete known track list stamped with the current time.
func (c *CatalogCache) Save(tracks []models.Track, total int) error {
	catalog := models.CachedCatalog{Tracks: tracks, Total: total, FetchedAt: c.clock.Now()}
	if catalog.Tracks == nil {
		catalog.Tracks = []models.Track{}
	}
	if err := catalog.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return c.store.Set(CatalogKey, string(data))
}

// Clear empties the slot.
func (c *CatalogCache) Clear() error {
	return c.store.Remove(CatalogKey)
}

// TTL returns the configured time-to-live.
func (c *CatalogCache) TTL() time.Duration { return c.ttl }
