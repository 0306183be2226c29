package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tessera/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogLoaded MsgKind = iota
	MsgLoggedIn
	MsgCollageProgress
	MsgCollageDone
	MsgBrowserOpened
)

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: err}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// collageProgressMsg is the constructor for [MsgCollageProgress]
func collageProgressMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgCollageProgress, data: update}
}

type collageOutcome struct {
	result *tasks.CollageResult
	err    error
}

// collageDoneMsg is the constructor for [MsgCollageDone]
func collageDoneMsg(result *tasks.CollageResult, err error) Msg {
	return Msg{kind: MsgCollageDone, data: collageOutcome{result, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}

func (m Msg) err() error {
	err, _ := m.data.(error)
	return err
}
