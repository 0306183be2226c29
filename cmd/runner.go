package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tessera/internal/catalog"
	"github.com/desertthunder/tessera/internal/repositories"
	"github.com/desertthunder/tessera/internal/services"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the Spotify client are opened on first use so that commands like
// `setup config` work before either exists.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	clock      shared.Clock
	limiter    *rate.Limiter
	openURL    func(string) error
	authWait   time.Duration
	spinners   bool

	db       *sql.DB
	store    repositories.KVStore
	collages *repositories.CollageRepository
	spotify  *services.SpotifyService
	images   services.ImageFetcher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Clock      shared.Clock
	Limiter    *rate.Limiter // paces catalog page requests; nil uses the configured interval
	OpenURL    func(string) error
	AuthWait   time.Duration

	DB      *sql.DB
	Store   repositories.KVStore
	Spotify *services.SpotifyService
	Images  services.ImageFetcher
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = shared.SystemClock{}
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.AuthWait <= 0 {
		opts.AuthWait = 2 * time.Minute
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		clock:      opts.Clock,
		limiter:    opts.Limiter,
		openURL:    opts.OpenURL,
		authWait:   opts.AuthWait,
		spinners:   opts.Output == os.Stdout,
		db:         opts.DB,
		store:      opts.Store,
		spotify:    opts.Spotify,
		images:     opts.Images,
	}
	if r.db != nil {
		r.collages = repositories.NewCollageRepository(r.db)
		if r.store == nil {
			r.store = repositories.NewSQLiteStore(r.db)
		}
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tracksCommand, playlistsCommand, collageCommand, prefsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// SetLogger replaces the logger, used by the TUI to move logs off the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database if the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// openStore opens the database, runs migrations and builds the repositories.
func (r *Runner) openStore() error {
	if r.store != nil {
		return nil
	}

	path := r.config.Database.Path
	if path == "" {
		path = shared.DefaultDatabasePath()
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Debug("database ready", "path", path)
	r.db = db
	r.store = repositories.NewSQLiteStore(db)
	r.collages = repositories.NewCollageRepository(db)
	return nil
}

// openSpotify builds the Spotify client and restores the stored session, if any.
func (r *Runner) openSpotify(ctx context.Context) error {
	if err := r.openStore(); err != nil {
		return err
	}
	if r.spotify == nil {
		svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map(), services.WithHTTPClient(r.httpClient))
		if err != nil {
			return fmt.Errorf("%w: set client_id and client_secret in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET", err, r.configLabel())
		}
		r.spotify = svc
	}
	if r.spotify.Authenticated() {
		return nil
	}

	tokens := repositories.NewTokenStore(r.store)
	token, err := tokens.Load()
	if err != nil {
		r.logger.Debug("no stored session", "error", err)
		return nil
	}
	return r.bindToken(ctx, token)
}

func (r *Runner) bindToken(ctx context.Context, token *oauth2.Token) error {
	tokens := repositories.NewTokenStore(r.store)
	r.spotify.SetTokenRefreshCallback(func(t *oauth2.Token) {
		if err := tokens.Save(t); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		} else {
			r.logger.Debug("token refreshed")
		}
	})
	if err := r.spotify.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

// requireSession is openSpotify plus a friendly error when nobody is logged in.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.openSpotify(ctx); err != nil {
		return err
	}
	if !r.spotify.Authenticated() {
		return fmt.Errorf("%w: run `tessera auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) imageFetcher() services.ImageFetcher {
	if r.images == nil {
		r.images = services.NewImageService(r.httpClient)
	}
	return r.images
}

func (r *Runner) catalogCache() *repositories.CatalogCache {
	return repositories.NewCatalogCache(r.store, r.config.Catalog.TTL(), r.clock)
}

// newLoader builds a catalog loader over the stored session and preferences.
func (r *Runner) newLoader(pageSize int) (*catalog.Loader, *repositories.CatalogCache) {
	if pageSize <= 0 {
		size, err := repositories.NewPreferences(r.store).PageSize()
		if err != nil {
			r.logger.Warn("failed to read page size preference", "error", err)
		}
		pageSize = size
	}

	state := catalog.NewState(pageSize)
	state.SetAuthenticated(r.spotify != nil && r.spotify.Authenticated())

	limiter := r.limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(r.config.Catalog.Interval()), 1)
	}

	cache := r.catalogCache()
	loader := catalog.NewLoader(state, catalog.LoaderOptions{
		Source:  r.spotify,
		Cache:   cache,
		Session: repositories.NewTokenStore(r.store),
		Limiter: limiter,
		Logger:  r.logger,
	})
	return loader, cache
}

// spin runs fn behind a spinner when writing to a terminal, and directly otherwise.
func (r *Runner) spin(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	if !r.spinners {
		return fn(ctx)
	}
	return spinner.New().Title(title).Context(ctx).ActionWithErr(fn).Run()
}

func (r *Runner) configLabel() string {
	if r.configPath != "" {
		return r.configPath
	}
	return "config.toml"
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
