package form

import (
	"context"

	"github.com/moyoez/calibre-panel/types"
)

// SettingsService loads and stores the configuration record.
type SettingsService interface {
	GetSettings(ctx context.Context) (types.Settings, error)
	SetSettings(ctx context.Context, settings types.Settings) error
}

// ExecRequest describes a long running backend call shown in an execute window.
type ExecRequest struct {
	Title   string
	Service string
	Method  string
	Params  any

	// IgnoreErrors keeps the window running when reading intermediate output fails.
	IgnoreErrors    bool
	HideStartButton bool
	HideStopButton  bool
}

// Window is the part of an execute window the caller may drive.
type Window interface {
	AppendValue(text string)
	SetButtonDisabled(button string, disabled bool)
}

// Outcome is the terminal result of a task. Err is nil when the task finished.
type Outcome struct {
	Output string
	Err    error
}

// Task is a started execute window. Done yields exactly one Outcome.
type Task interface {
	Window
	ID() string
	Done() <-chan Outcome
}

// Executor starts execute windows.
type Executor interface {
	Start(ctx context.Context, req ExecRequest) (Task, error)
}

// Panel is a sibling panel of the enclosing tab container.
type Panel interface {
	Enable()
	Disable()
	ShowTab()
	HideTab()
}

// Siblings are the panels next to the settings form. Either may be nil.
type Siblings struct {
	Books Panel
	Web   Panel
}

// MessageBox shows errors to the user.
type MessageBox interface {
	Error(err error)
}

// Browser is the browsing context the form runs in.
type Browser interface {
	Hostname() string
	Open(url, target string)
}
