package types

// Execute window button identifiers.
const (
	ButtonStart = "start"
	ButtonStop  = "stop"
	ButtonClose = "close"
)

// Execute event types pushed to websocket subscribers.
const (
	ExecEventOutput    = "output"
	ExecEventButton    = "button"
	ExecEventFinish    = "finish"
	ExecEventException = "exception"
)

// ExecEvent is a single update of an execute window.
type ExecEvent struct {
	Type     string `json:"type"`
	JobID    string `json:"jobId"`
	Text     string `json:"text,omitempty"`
	Button   string `json:"button,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Error    string `json:"error,omitempty"`
	Seq      uint64 `json:"seq,omitempty"`
}

// ExecSnapshot is the full state of an execute window.
type ExecSnapshot struct {
	JobID   string          `json:"jobId"`
	Title   string          `json:"title"`
	Service string          `json:"service"`
	Method  string          `json:"method"`
	Output  string          `json:"output"`
	Running bool            `json:"running"`
	Error   string          `json:"error,omitempty"`
	Buttons map[string]bool `json:"buttons"` // button id -> disabled
	Hidden  []string        `json:"hidden,omitempty"`
	Seq     uint64          `json:"seq"` // last event included in this state
}
