package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesync/internal/tasks"
)

// MsgKind enumerates all message types of the progress view.
type MsgKind int

// Msg represents all possible messages in the progress view (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunComplete
)

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(err error) Msg {
	return Msg{kind: MsgRunComplete, data: err}
}
