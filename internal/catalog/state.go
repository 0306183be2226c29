package catalog

import (
	"slices"
	"sync"

	"github.com/desertthunder/tessera/internal/models"
)

// State is the shared liked-songs state. The lock is held only to copy values in or out.
type State struct {
	mu            sync.RWMutex
	tracks        []models.Track
	load          models.LoadState
	authenticated bool
}

// NewState creates an empty state with the given page size, clamped to the allowed range.
func NewState(pageSize int) *State {
	return &State{load: models.LoadState{PageSize: models.ClampPageSize(pageSize)}}
}

// Snapshot returns a copy of the load state.
func (s *State) Snapshot() models.LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() models.LoadState {
	ls := s.load
	if ls.Total != nil {
		total := *ls.Total
		ls.Total = &total
	}
	return ls
}

// Tracks returns a copy of the loaded tracks.
func (s *State) Tracks() []models.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tracks)
}

// Len returns the number of loaded tracks.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

func (s *State) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load.PageSize = models.ClampPageSize(n)
}

func (s *State) SetAuthenticated(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = ok
}

func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Reset drops loaded tracks and progress and marks the session unauthenticated. The page size is kept.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = nil
	s.load = models.LoadState{PageSize: s.load.PageSize}
	s.authenticated = false
}

// begin marks a load as running and returns the state it starts from. With restart set the list and the known total are cleared first.
func (s *State) begin(restart bool) models.LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if restart {
		s.tracks = nil
		s.load.LoadedCount = 0
		s.load.Total = nil
	}
	s.load.IsLoading = true
	return s.snapshotLocked()
}

func (s *State) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load.IsLoading = loading
}

// commit appends tracks, advances the count and records total. It reports whether the catalog is
// now complete and, if so, returns a copy of the full list for the cache.
func (s *State) commit(tracks []models.Track, total int) (bool, []models.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracks = append(s.tracks, tracks...)
	s.load.LoadedCount += len(tracks)
	s.load.Total = &total

	if s.load.LoadedCount < total {
		return false, nil
	}
	s.load.IsLoading = false
	return true, slices.Clone(s.tracks)
}
