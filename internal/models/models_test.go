package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tessera/internal/shared"
)

func TestCachedCatalog(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			catalog CachedCatalog
			wantErr bool
		}{
			{"valid partial", CachedCatalog{Tracks: make([]Track, 2), Total: 5, FetchedAt: now}, false},
			{"valid empty", CachedCatalog{Total: 0, FetchedAt: now}, false},
			{"more tracks than total", CachedCatalog{Tracks: make([]Track, 3), Total: 2, FetchedAt: now}, true},
			{"negative total", CachedCatalog{Total: -1, FetchedAt: now}, true},
			{"missing timestamp", CachedCatalog{Total: 1}, true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.catalog.Validate()
				if (err != nil) != tt.wantErr {
					t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
				if err != nil && !errors.Is(err, shared.ErrInvalidCache) {
					t.Errorf("expected ErrInvalidCache, got %v", err)
				}
			})
		}
	})

	t.Run("Expired at the boundary", func(t *testing.T) {
		c := CachedCatalog{FetchedAt: now}
		ttl := 24 * time.Hour

		if c.Expired(now.Add(ttl), ttl) {
			t.Error("entry exactly at ttl should still be valid")
		}
		if !c.Expired(now.Add(ttl+time.Millisecond), ttl) {
			t.Error("entry past ttl should be expired")
		}
	})
}

func TestLoadState(t *testing.T) {
	total := 3
	tc := []struct {
		name      string
		state     LoadState
		complete  bool
		unbounded bool
	}{
		{"unknown total", LoadState{LoadedCount: 10, PageSize: 50}, false, false},
		{"partial", LoadState{LoadedCount: 2, Total: &total, PageSize: 1000}, false, true},
		{"complete", LoadState{LoadedCount: 3, Total: &total, PageSize: 10}, true, false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Complete(); got != tt.complete {
				t.Errorf("Complete() = %v, want %v", got, tt.complete)
			}
			if got := tt.state.Unbounded(); got != tt.unbounded {
				t.Errorf("Unbounded() = %v, want %v", got, tt.unbounded)
			}
		})
	}
}

func TestClampPageSize(t *testing.T) {
	for in, want := range map[int]int{0: 10, 9: 10, 10: 10, 50: 50, 1000: 1000, 5000: 1000} {
		if got := ClampPageSize(in); got != want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCollageValidate(t *testing.T) {
	if err := NewCollage("/tmp/a.png", 100, 50, 8, 240).Validate(); err != nil {
		t.Errorf("valid collage failed validation: %v", err)
	}
	if err := NewCollage("", 100, 50, 8, 240).Validate(); err == nil {
		t.Error("expected error for missing path")
	}
	if err := NewCollage("/tmp/a.png", 0, 50, 8, 240).Validate(); err == nil {
		t.Error("expected error for zero width")
	}
	if err := NewCollage("/tmp/a.png", 100, 50, 0, 240).Validate(); err == nil {
		t.Error("expected error for zero tiles")
	}
}
