package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/services"
	"github.com/desertthunder/tessera/internal/shared"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultInterval is the pause between consecutive page requests.
const DefaultInterval = 50 * time.Millisecond

const (
	initialKey = "initial"
	moreKey    = "more"
)

// Source fetches one page of saved tracks.
type Source interface {
	SavedTracks(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedTracks, error)
}

// Cache stores the complete known track list. Load returns nil on a miss.
type Cache interface {
	Load() (*models.CachedCatalog, error)
	Save(tracks []models.Track, total int) error
}

// Session is told when the API rejects the current credentials.
type Session interface {
	Invalidate() error
}

// LoaderOptions configures a [Loader]. Cache and Session may be nil.
type LoaderOptions struct {
	Source  Source
	Cache   Cache
	Session Session
	// Limiter paces page requests. Nil uses one request per [DefaultInterval].
	Limiter *rate.Limiter
	Logger  *log.Logger
}

// Loader fills a [State] from the cache or the network.
type Loader struct {
	state   *State
	source  Source
	cache   Cache
	session Session
	limiter *rate.Limiter
	logger  *log.Logger
	group   singleflight.Group
	// run serializes reloads with page loads; each kind shares one flight.
	run sync.Mutex
}

// NewLoader creates a loader for state.
func NewLoader(state *State, opts LoaderOptions) *Loader {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(DefaultInterval), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{
		state:   state,
		source:  opts.Source,
		cache:   opts.Cache,
		session: opts.Session,
		limiter: limiter,
		logger:  shared.WithLogger(logger, "component", "catalog"),
	}
}

// State returns the state the loader writes to.
func (l *Loader) State() *State { return l.state }

// FetchInitial restarts the catalog from the beginning, serving the first page from the cache when possible.
// A reload issued while a page load is running starts once that load finishes.
func (l *Loader) FetchInitial(ctx context.Context) error {
	return l.do(initialKey, func() error { return l.fetchInitial(ctx) })
}

// LoadMore appends the next page. It is a no-op once every track is loaded.
func (l *Loader) LoadMore(ctx context.Context) error {
	return l.do(moreKey, func() error { return l.loadMore(ctx, false) })
}

// LoadAll calls LoadMore until the catalog is complete or a call makes no progress.
func (l *Loader) LoadAll(ctx context.Context) error {
	for !l.state.Snapshot().Complete() {
		before := l.state.Snapshot().LoadedCount
		if err := l.LoadMore(ctx); err != nil {
			return err
		}
		if l.state.Snapshot().LoadedCount == before {
			return nil
		}
	}
	return nil
}

// do runs fn unless a load of the same kind is already in flight, in which case it waits for that
// load's result.
func (l *Loader) do(key string, fn func() error) error {
	if !l.state.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	_, err, _ := l.group.Do(key, func() (any, error) {
		l.run.Lock()
		defer l.run.Unlock()
		return nil, fn()
	})
	return err
}

func (l *Loader) fetchInitial(ctx context.Context) error {
	ls := l.state.begin(true)

	if cached := l.loadCache(); cached != nil {
		n := len(cached.Tracks)
		if !ls.Unbounded() {
			n = min(ls.PageSize, n)
		}
		l.state.commit(cached.Tracks[:n], cached.Total)
		l.state.setLoading(false)
		l.saveCache(cached.Tracks, cached.Total)
		l.logger.Debug("initial page served from cache", "loaded", n, "total", cached.Total)
		return nil
	}

	return l.loadMore(ctx, true)
}

func (l *Loader) loadMore(ctx context.Context, initial bool) error {
	if l.state.Snapshot().Complete() {
		return nil
	}
	ls := l.state.begin(false)

	if cached := l.loadCache(); cached != nil && len(cached.Tracks) > ls.LoadedCount {
		end := len(cached.Tracks)
		if !ls.Unbounded() {
			end = min(ls.LoadedCount+ls.PageSize, end)
		}
		l.state.commit(cached.Tracks[ls.LoadedCount:end], cached.Total)
		l.state.setLoading(false)
		l.saveCache(cached.Tracks, cached.Total)
		l.logger.Debug("page served from cache", "from", ls.LoadedCount, "to", end)
		return nil
	}

	return l.fetchPages(ctx, ls, initial)
}

// desired is how many tracks one network load asks for.
func desired(ls models.LoadState) int {
	switch {
	case !ls.Unbounded():
		return ls.PageSize
	case ls.Total != nil:
		return max(*ls.Total-ls.LoadedCount, 0)
	default:
		return models.MaxPageSize
	}
}

func (l *Loader) fetchPages(ctx context.Context, ls models.LoadState, initial bool) error {
	want := desired(ls)
	requests := (want + models.PageLimit - 1) / models.PageLimit
	remaining := want

	for i := range requests {
		limit := min(remaining, models.PageLimit)
		offset := ls.LoadedCount + i*models.PageLimit
		last := i == requests-1

		if err := l.limiter.Wait(ctx); err != nil {
			l.state.setLoading(false)
			return fmt.Errorf("load cancelled before offset %d: %w", offset, err)
		}

		page, err := l.source.SavedTracks(ctx, limit, offset)
		if err != nil {
			return l.fail(offset, err)
		}

		complete, all := l.state.commit(services.TracksFromPage(page), page.Total)
		remaining -= limit
		l.logger.Debug("page loaded", "offset", offset, "items", len(page.Items), "total", page.Total)

		if complete {
			l.saveCache(all, max(page.Total, len(all)))
			return nil
		}
		if len(page.Items) == 0 {
			break
		}
		if initial || last {
			l.state.setLoading(false)
		}
	}

	l.state.setLoading(false)
	return nil
}

func (l *Loader) fail(offset int, err error) error {
	if errors.Is(err, shared.ErrUnauthorized) {
		l.logger.Warn("session rejected, signing out", "offset", offset)
		if l.session != nil {
			if ierr := l.session.Invalidate(); ierr != nil {
				l.logger.Error("failed to invalidate session", "error", ierr)
			}
		}
		l.state.Reset()
	} else {
		l.logger.Error("page load failed", "offset", offset, "error", err)
		l.state.setLoading(false)
	}
	return fmt.Errorf("failed to load tracks at offset %d: %w", offset, err)
}

// loadCache returns a fresh cached catalog or nil. Errors are logged and treated as a miss.
func (l *Loader) loadCache() *models.CachedCatalog {
	if l.cache == nil {
		return nil
	}
	cached, err := l.cache.Load()
	if err != nil {
		l.logger.Warn("cache read failed", "error", err)
		return nil
	}
	return cached
}

func (l *Loader) saveCache(tracks []models.Track, total int) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Save(tracks, total); err != nil {
		l.logger.Warn("cache write failed", "error", err)
	}
}
