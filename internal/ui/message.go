package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spt/internal/tasks"
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
	MsgTick MsgKind = iota
	MsgIntentDone
	MsgLifecycle
)

type intentResult struct {
	intent tasks.Intent
	err    error
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// intentDoneMsg is the constructor for [MsgIntentDone]
func intentDoneMsg(in tasks.Intent, err error) Msg {
	return Msg{kind: MsgIntentDone, data: intentResult{intent: in, err: err}}
}

// lifecycleMsg is the constructor for [MsgLifecycle]
func lifecycleMsg(u tasks.Update) Msg {
	return Msg{kind: MsgLifecycle, data: u}
}
