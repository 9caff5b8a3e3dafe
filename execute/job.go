package execute

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/types"
)

// Job is one execute window: a running backend method plus the window state
// (accumulated output and button states) shown to the user.
type Job struct {
	id  string
	req form.ExecRequest

	mu      sync.Mutex
	output  strings.Builder
	buttons map[string]bool // button id -> disabled
	running bool
	err     error
	seq     uint64 // sequence number of the last published event
	cancel  context.CancelFunc

	done chan form.Outcome
	sink EventSink
}

var _ form.Task = (*Job)(nil)

func newJob(id string, req form.ExecRequest, cancel context.CancelFunc, sink EventSink) *Job {
	return &Job{
		id:  id,
		req: req,
		buttons: map[string]bool{
			types.ButtonStart: true, // the job starts immediately
			types.ButtonStop:  false,
			types.ButtonClose: false,
		},
		running: true,
		cancel:  cancel,
		done:    make(chan form.Outcome, 1),
		sink:    sink,
	}
}

func (j *Job) ID() string {
	return j.id
}

// Request returns the request the job was started with.
func (j *Job) Request() form.ExecRequest {
	return j.req
}

// Done yields the outcome once the method returned.
func (j *Job) Done() <-chan form.Outcome {
	return j.done
}

// AppendValue appends text as its own line to the window output.
func (j *Job) AppendValue(text string) {
	j.mu.Lock()
	if j.output.Len() > 0 && !strings.HasSuffix(j.output.String(), "\n") {
		text = "\n" + text
	}
	j.output.WriteString(text)
	ev := j.nextEvent(types.ExecEvent{Type: types.ExecEventOutput, Text: text})
	j.mu.Unlock()
	j.publish(ev)
}

// Write appends raw method output.
func (j *Job) Write(p []byte) (int, error) {
	j.mu.Lock()
	j.output.Write(p)
	ev := j.nextEvent(types.ExecEvent{Type: types.ExecEventOutput, Text: string(p)})
	j.mu.Unlock()
	j.publish(ev)
	return len(p), nil
}

func (j *Job) SetButtonDisabled(button string, disabled bool) {
	j.mu.Lock()
	j.buttons[button] = disabled
	ev := j.nextEvent(types.ExecEvent{Type: types.ExecEventButton, Button: button, Disabled: disabled})
	j.mu.Unlock()
	j.publish(ev)
}

// ButtonDisabled reports the state of a window button.
func (j *Job) ButtonDisabled(button string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.buttons[button]
}

// Output returns everything written so far.
func (j *Job) Output() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output.String()
}

// Running reports whether the method has not returned yet.
func (j *Job) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// Snapshot returns the window state.
func (j *Job) Snapshot() types.ExecSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := types.ExecSnapshot{
		JobID:   j.id,
		Title:   j.req.Title,
		Service: j.req.Service,
		Method:  j.req.Method,
		Output:  j.output.String(),
		Running: j.running,
		Seq:     j.seq,
		Buttons: make(map[string]bool, len(j.buttons)),
		Hidden:  j.hiddenButtons(),
	}
	for k, v := range j.buttons {
		snap.Buttons[k] = v
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}

func (j *Job) hiddenButtons() []string {
	var hidden []string
	if j.req.HideStartButton {
		hidden = append(hidden, types.ButtonStart)
	}
	if j.req.HideStopButton {
		hidden = append(hidden, types.ButtonStop)
	}
	return hidden
}

// stoppable reports whether the user may stop the job.
func (j *Job) stoppable() bool {
	return !slices.Contains(j.hiddenButtons(), types.ButtonStop)
}

func (j *Job) finish(err error) {
	j.mu.Lock()
	j.running = false
	j.err = err
	j.buttons[types.ButtonStop] = true
	out := j.output.String()
	ev := types.ExecEvent{Type: types.ExecEventFinish}
	if err != nil {
		ev = types.ExecEvent{Type: types.ExecEventException, Error: err.Error()}
	}
	ev = j.nextEvent(ev)
	j.mu.Unlock()

	j.publish(ev)
	j.done <- form.Outcome{Output: out, Err: err}
}

// nextEvent stamps ev with the job id and the next sequence number. Callers hold j.mu.
func (j *Job) nextEvent(ev types.ExecEvent) types.ExecEvent {
	j.seq++
	ev.JobID = j.id
	ev.Seq = j.seq
	return ev
}

func (j *Job) publish(ev types.ExecEvent) {
	if j.sink == nil {
		return
	}
	j.sink.Broadcast(ev)
}
