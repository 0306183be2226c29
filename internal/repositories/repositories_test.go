package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			Title:   fmt.Sprintf("Song %d", i),
			Artists: "Artist A, Artist B",
			ArtURL:  fmt.Sprintf("https://i.scdn.co/image/%d", i),
			PlayURI: fmt.Sprintf("spotify:track:%d", i),
		}
	}
	return tracks
}

func TestSQLiteStore(t *testing.T) {
	t.Run("Get missing key", func(t *testing.T) {
		store := NewSQLiteStore(setupTestDB(t))

		_, ok, err := store.Get("nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected missing key")
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		store := NewSQLiteStore(setupTestDB(t))

		if err := store.Set("k", "one"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := store.Set("k", "two"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		v, ok, err := store.Get("k")
		if err != nil || !ok || v != "two" {
			t.Errorf("Get() = %q, %v, %v; want two", v, ok, err)
		}
	})

	t.Run("Remove and Keys", func(t *testing.T) {
		store := NewSQLiteStore(setupTestDB(t))
		store.Set("b", "1")
		store.Set("a", "2")

		keys, err := store.Keys()
		if err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
		if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
			t.Errorf("Keys() = %v", keys)
		}

		if err := store.Remove("a"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if err := store.Remove("a"); err != nil {
			t.Errorf("removing a missing key should succeed: %v", err)
		}
		if _, ok, _ := store.Get("a"); ok {
			t.Error("key should be gone")
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewSQLiteStore(db)
		db.Close()

		if _, _, err := store.Get("k"); err == nil {
			t.Error("expected error from closed database")
		}
		if err := store.Set("k", "v"); err == nil {
			t.Error("expected error from closed database")
		}
	})
}

func TestCatalogCache(t *testing.T) {
	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("miss on empty store", func(t *testing.T) {
		cache := NewCatalogCache(NewMemoryStore(), 0, &shared.FixedClock{T: start})

		got, err := cache.Load()
		if err != nil || got != nil {
			t.Errorf("Load() = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("round trip preserves order", func(t *testing.T) {
		cache := NewCatalogCache(NewSQLiteStore(setupTestDB(t)), 0, &shared.FixedClock{T: start})
		tracks := sampleTracks(5)

		if err := cache.Save(tracks, 12); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := cache.Load()
		if err != nil || got == nil {
			t.Fatalf("Load() = %v, %v", got, err)
		}
		if got.Total != 12 || len(got.Tracks) != 5 {
			t.Errorf("got total=%d len=%d", got.Total, len(got.Tracks))
		}
		for i := range tracks {
			if got.Tracks[i] != tracks[i] {
				t.Errorf("track %d = %+v, want %+v", i, got.Tracks[i], tracks[i])
			}
		}
		if !got.FetchedAt.Equal(start) {
			t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, start)
		}
	})

	t.Run("ttl boundary evicts", func(t *testing.T) {
		store := NewMemoryStore()
		clock := &shared.FixedClock{T: start}
		cache := NewCatalogCache(store, 0, clock)
		cache.Save(sampleTracks(2), 2)

		clock.Advance(CatalogTTL)
		if got, _ := cache.Load(); got == nil {
			t.Fatal("entry at exactly 24h should still be valid")
		}

		clock.Advance(time.Millisecond)
		if got, _ := cache.Load(); got != nil {
			t.Fatal("entry past 24h should be a miss")
		}
		if _, ok, _ := store.Get(CatalogKey); ok {
			t.Error("expired entry should be removed")
		}
	})

	t.Run("save refreshes timestamp", func(t *testing.T) {
		clock := &shared.FixedClock{T: start}
		cache := NewCatalogCache(NewMemoryStore(), 0, clock)
		cache.Save(sampleTracks(2), 2)

		clock.Advance(20 * time.Hour)
		cached, _ := cache.Load()
		cache.Save(cached.Tracks, cached.Total)

		clock.Advance(20 * time.Hour)
		if got, _ := cache.Load(); got == nil {
			t.Error("re-saved entry should still be valid")
		}
	})

	t.Run("invalid blobs are evicted", func(t *testing.T) {
		blobs := map[string]string{
			"not json":          "{",
			"more than total":   mustJSON(t, models.CachedCatalog{Tracks: sampleTracks(3), Total: 1, FetchedAt: start}),
			"missing timestamp": mustJSON(t, models.CachedCatalog{Tracks: sampleTracks(1), Total: 1}),
		}

		for name, blob := range blobs {
			t.Run(name, func(t *testing.T) {
				store := NewMemoryStore()
				store.Set(CatalogKey, blob)
				cache := NewCatalogCache(store, 0, &shared.FixedClock{T: start})

				got, err := cache.Load()
				if err != nil || got != nil {
					t.Errorf("Load() = %v, %v; want miss", got, err)
				}
				if _, ok, _ := store.Get(CatalogKey); ok {
					t.Error("invalid entry should be removed")
				}
			})
		}
	})

	t.Run("save rejects inconsistent list", func(t *testing.T) {
		cache := NewCatalogCache(NewMemoryStore(), 0, &shared.FixedClock{T: start})
		if err := cache.Save(sampleTracks(3), 2); !errors.Is(err, shared.ErrInvalidCache) {
			t.Errorf("Save() error = %v, want ErrInvalidCache", err)
		}
	})

	t.Run("store errors surface", func(t *testing.T) {
		store := NewMemoryStore()
		store.Err = errors.New("disk full")
		cache := NewCatalogCache(store, time.Hour, nil)

		if _, err := cache.Load(); err == nil {
			t.Error("expected Load error")
		}
		if err := cache.Save(nil, 0); err == nil {
			t.Error("expected Save error")
		}
		if cache.TTL() != time.Hour {
			t.Errorf("TTL() = %v", cache.TTL())
		}
	})
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestPreferences(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		prefs := NewPreferences(NewSQLiteStore(setupTestDB(t)))

		if n, _ := prefs.PageSize(); n != 50 {
			t.Errorf("PageSize() = %d, want 50", n)
		}
		if s, _ := prefs.HueShift(); s != 240 {
			t.Errorf("HueShift() = %v, want 240", s)
		}
		if w, h, _ := prefs.CollageSize(); w != 1920 || h != 1080 {
			t.Errorf("CollageSize() = %dx%d", w, h)
		}
	})

	t.Run("page size is clamped", func(t *testing.T) {
		prefs := NewPreferences(NewMemoryStore())

		prefs.SetPageSize(3)
		if n, _ := prefs.PageSize(); n != 10 {
			t.Errorf("PageSize() = %d, want 10", n)
		}
		prefs.SetPageSize(99999)
		if n, _ := prefs.PageSize(); n != 1000 {
			t.Errorf("PageSize() = %d, want 1000", n)
		}
	})

	t.Run("unparsable values fall back", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set(PrefTracksPerLoad, "many")
		store.Set(PrefColorShift, "blue")
		prefs := NewPreferences(store)

		if n, err := prefs.PageSize(); n != 50 || err != nil {
			t.Errorf("PageSize() = %d, %v", n, err)
		}
		if s, err := prefs.HueShift(); s != 240 || err != nil {
			t.Errorf("HueShift() = %v, %v", s, err)
		}
	})

	t.Run("Set parses text", func(t *testing.T) {
		prefs := NewPreferences(NewMemoryStore())

		tc := []struct {
			key, value string
			wantErr    bool
		}{
			{PrefTracksPerLoad, "200", false},
			{PrefColorShift, "-30", false},
			{PrefCollageWidth, "800", false},
			{PrefCollageHeight, "600", false},
			{PrefTracksPerLoad, "lots", true},
			{PrefCollageWidth, "0", true},
			{"volume", "11", true},
		}
		for _, tt := range tc {
			err := prefs.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		}

		all, err := prefs.All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		want := map[string]string{
			PrefTracksPerLoad: "200",
			PrefColorShift:    "330",
			PrefCollageWidth:  "800",
			PrefCollageHeight: "600",
		}
		for k, v := range want {
			if all[k] != v {
				t.Errorf("All()[%s] = %s, want %s", k, all[k], v)
			}
		}
		if !IsPreference(PrefColorShift) || IsPreference("volume") {
			t.Error("IsPreference() mismatch")
		}
	})
}

func TestTokenStore(t *testing.T) {
	store := NewTokenStore(NewSQLiteStore(setupTestDB(t)))

	if _, err := store.Load(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("Load() error = %v, want ErrNotAuthenticated", err)
	}

	if err := store.Save(&oauth2.Token{}); err == nil {
		t.Error("expected error saving empty token")
	}

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	if err := store.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" || !got.Expiry.Equal(token.Expiry) {
		t.Errorf("Load() = %+v", got)
	}

	if err := store.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("token should be gone after Invalidate, got %v", err)
	}
}

func TestCollageRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewCollageRepository(setupTestDB(t))
		c := models.NewCollage("/tmp/collage-a.png", 1920, 1080, 24, 240)

		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create collage: %v", err)
		}
		if c.ID() == "" {
			t.Fatal("collage ID should be set after creation")
		}

		got, err := repo.Get(c.ID())
		if err != nil {
			t.Fatalf("failed to get collage: %v", err)
		}
		if got.Path() != c.Path() || got.Tiles() != 24 || got.HueShift() != 240 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("Create rejects invalid", func(t *testing.T) {
		repo := NewCollageRepository(setupTestDB(t))
		if err := repo.Create(models.NewCollage("", 1, 1, 1, 0)); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Update and Delete", func(t *testing.T) {
		repo := NewCollageRepository(setupTestDB(t))
		c := models.NewCollage("/tmp/old.png", 100, 100, 4, 0)
		repo.Create(c)

		c.SetPath("/tmp/new.png")
		if err := repo.Update(c); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, _ := repo.Get(c.ID())
		if got.Path() != "/tmp/new.png" {
			t.Errorf("path = %s", got.Path())
		}

		if err := repo.Delete(c.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(c.ID()); err == nil {
			t.Error("expected not found after delete")
		}
		if err := repo.Delete(c.ID()); err == nil {
			t.Error("deleting twice should fail")
		}
	})

	t.Run("List newest first with limit", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCollageRepository(db)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range 3 {
			c := models.RestoreCollage("", fmt.Sprintf("/tmp/%d.png", i), 10, 10, 1, 0, base.Add(time.Duration(i)*time.Hour))
			if err := repo.Create(c); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 3 || all[0].Path() != "/tmp/2.png" {
			t.Errorf("List() order wrong: %v", all)
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("List(limit=1) returned %d", len(limited))
		}
	})
}
