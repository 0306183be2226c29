package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tessera/internal/catalog"
	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/desertthunder/tessera/internal/tasks"
	"github.com/dustin/go-humanize"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LibraryView
	CollageView
)

// Catalog is the liked-songs loader the TUI drives. [catalog.Loader] satisfies it.
type Catalog interface {
	FetchInitial(ctx context.Context) error
	LoadMore(ctx context.Context) error
	State() *catalog.State
}

// CollageGenerator builds a collage from a track snapshot. [tasks.CollageEngine] satisfies it.
type CollageGenerator interface {
	Generate(ctx context.Context, progress chan<- tasks.ProgressUpdate, tracks []models.Track, opts tasks.CollageOpts) (*tasks.CollageResult, error)
}

// Options wires the TUI to the rest of the application.
type Options struct {
	Catalog     Catalog
	Cache       interface{ Clear() error } // cleared on reload; may be nil
	Collages    CollageGenerator
	CollageOpts tasks.CollageOpts
	Login       func(ctx context.Context) error // runs the OAuth flow and marks the state authenticated
	OpenURL     func(url string) error
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	opts Options
	log  *log.Logger

	view    ViewState
	width   int
	height  int
	list    list.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	loading   bool
	loggingIn bool
	status    string
	err       error

	progressChan <-chan tasks.ProgressUpdate
	collageDone  <-chan Msg
	progress     tasks.ProgressUpdate
	collage      *tasks.CollageResult
	collageErr   error
	composing    bool
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Liked Songs"
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	view := LibraryView
	if !opts.Catalog.State().Authenticated() {
		view = LoginView
	}

	return &Model{
		ctx:     ctx,
		opts:    opts,
		log:     shared.WithLogger(logger, "component", "tui"),
		view:    view,
		list:    l,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Init starts the first catalog load when a session exists.
func (m *Model) Init() tea.Cmd {
	if m.view == LoginView {
		return nil
	}
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchInitial())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case CollageView:
			return m.handleCollageKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogLoaded:
		m.loading = false
		m.refreshList()
		if err := msg.err(); err != nil {
			if errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrNotAuthenticated) {
				m.view = LoginView
				m.status = "Your session expired. Log in again to continue."
				return m, nil
			}
			m.log.Error("catalog load failed", "error", err)
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = m.countLine()
		return m, nil

	case MsgLoggedIn:
		m.loggingIn = false
		if err := msg.err(); err != nil {
			m.err = err
			m.status = "Login failed."
			return m, nil
		}
		m.err = nil
		m.view = LibraryView
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchInitial())

	case MsgCollageProgress:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForCollage()

	case MsgCollageDone:
		out := msg.data.(collageOutcome)
		m.composing = false
		m.progressChan = nil
		m.collageDone = nil
		m.collage = out.result
		m.collageErr = out.err
		if out.err != nil {
			m.log.Error("collage failed", "error", out.err)
		}
		return m, nil

	case MsgBrowserOpened:
		if err := msg.err(); err != nil {
			m.status = fmt.Sprintf("Could not open browser: %v", err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) busy() bool {
	return m.loading || m.loggingIn || m.composing
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.login):
		if m.loggingIn || m.opts.Login == nil {
			return m, nil
		}
		m.loggingIn = true
		m.err = nil
		m.status = "Waiting for Spotify authorization in your browser..."
		return m, tea.Batch(m.spinner.Tick, m.login())
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.more):
		if m.loading {
			return m, nil
		}
		if m.opts.Catalog.State().Snapshot().Complete() {
			m.status = "All liked songs are loaded."
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadMore())

	case key.Matches(msg, m.keys.reload):
		if m.loading {
			return m, nil
		}
		if m.opts.Cache != nil {
			if err := m.opts.Cache.Clear(); err != nil {
				m.log.Warn("failed to clear catalog cache", "error", err)
			}
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchInitial())

	case key.Matches(msg, m.keys.collage):
		if m.opts.Collages == nil {
			return m, nil
		}
		tracks := m.opts.Catalog.State().Tracks()
		if len(tracks) == 0 {
			m.status = "Load some songs before building a collage."
			return m, nil
		}
		m.view = CollageView
		return m, tea.Batch(m.spinner.Tick, m.startCollage(tracks))

	case key.Matches(msg, m.keys.open):
		if item, ok := m.list.SelectedItem().(trackItem); ok {
			if url := trackURL(item.track.PlayURI); url != "" {
				return m, m.openURL(url)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleCollageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.composing {
			return m, nil
		}
		m.view = LibraryView
		m.collage = nil
		m.collageErr = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) refreshList() {
	tracks := m.opts.Catalog.State().Tracks()
	idx := m.list.Index()
	m.list.SetItems(trackItems(tracks))
	if idx < len(tracks) {
		m.list.Select(idx)
	}
}

func (m *Model) countLine() string {
	ls := m.opts.Catalog.State().Snapshot()
	if ls.Total == nil {
		return fmt.Sprintf("%s songs loaded", humanize.Comma(int64(ls.LoadedCount)))
	}
	return fmt.Sprintf("%s of %s songs loaded", humanize.Comma(int64(ls.LoadedCount)), humanize.Comma(int64(*ls.Total)))
}

func (m *Model) fetchInitial() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg(m.opts.Catalog.FetchInitial(m.ctx))
	}
}

func (m *Model) loadMore() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg(m.opts.Catalog.LoadMore(m.ctx))
	}
}

func (m *Model) login() tea.Cmd {
	return func() tea.Msg {
		return loggedInMsg(m.opts.Login(m.ctx))
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.opts.OpenURL
	return func() tea.Msg {
		return browserOpenedMsg(open(url))
	}
}

func (m *Model) startCollage(tracks []models.Track) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.collageDone = done
	m.composing = true
	m.collage = nil
	m.collageErr = nil
	m.progress = tasks.ProgressUpdate{Message: "Starting..."}

	gen, opts, ctx := m.opts.Collages, m.opts.CollageOpts, m.ctx
	go func() {
		result, err := gen.Generate(ctx, progress, tracks, opts)
		done <- collageDoneMsg(result, err)
		close(progress)
	}()

	return m.waitForCollage()
}

func (m *Model) waitForCollage() tea.Cmd {
	progress, done := m.progressChan, m.collageDone
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return collageProgressMsg(update)
		}
		return <-done
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case CollageView:
		return m.renderCollage()
	default:
		return m.renderLibrary()
	}
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("tessera"))
	b.WriteString("\n")
	b.WriteString("Log in with Spotify to browse your liked songs.\n\n")
	if m.loggingIn {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.status)
	} else if m.status != "" {
		b.WriteString(styles.warn.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit}))
	return styles.frame.Render(b.String())
}

func (m *Model) renderLibrary() string {
	var status string
	switch {
	case m.loading:
		status = fmt.Sprintf("%s Loading liked songs...", m.spinner.View())
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	default:
		status = m.status
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.more, m.keys.reload, m.keys.collage, m.keys.open, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), styles.status.Render(status), helpView)
}

func (m *Model) renderCollage() string {
	title := styles.title.Render("Album Art Collage")

	if m.composing {
		return fmt.Sprintf("%s\n%s %s", title, m.spinner.View(), m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	if m.collageErr != nil {
		msg := fmt.Sprintf("Collage failed: %v", m.collageErr)
		if errors.Is(m.collageErr, shared.ErrNoImages) {
			msg = "None of the loaded songs have usable album art."
		}
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(msg), helpView)
	}
	if m.collage == nil {
		return fmt.Sprintf("%s\n\n%s", title, helpView)
	}

	r := m.collage
	info := fmt.Sprintf(
		"%s\n\nFile: %s\nSize: %dx%d (%d tiles, %s)\nSkipped: %d images",
		styles.ok.Render("✓ Collage saved"),
		filepath.Base(r.Collage.Path()),
		r.Layout.Width, r.Layout.Height, len(r.Layout.Placements),
		humanize.Bytes(uint64(r.Size)),
		r.Skipped,
	)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
