package form

import (
	"context"
	"sync"

	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

// Action is a running import or update. It completes once its task reports
// finish or exception and the form has reacted to it.
type Action struct {
	Method string
	Task   Task

	done    chan struct{}
	once    sync.Once
	outcome Outcome
}

// Done is closed after the form returned to Ready.
func (a *Action) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the action completed or ctx is done.
func (a *Action) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-a.done:
		return a.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// ImportRequest is the execute window request importing the books of a shared folder.
func ImportRequest(sharedFolderRef string) ExecRequest {
	return ExecRequest{
		Title:           ImportTitle,
		Service:         RPCService,
		Method:          RPCImportMethod,
		Params:          types.ImportParams{SharedFolderRef: sharedFolderRef},
		IgnoreErrors:    true,
		HideStartButton: true,
		HideStopButton:  false,
	}
}

// UpdateRequest is the execute window request updating Calibre.
func UpdateRequest() ExecRequest {
	return ExecRequest{
		Title:           UpdateTitle,
		Service:         RPCService,
		Method:          RPCUpdateMethod,
		HideStartButton: true,
		HideStopButton:  true,
	}
}

// OnImport imports the books found in the shared folder selected in the Book Import section.
func (f *SettingsForm) OnImport(ctx context.Context) (*Action, error) {
	return f.startAction(ctx, ImportRequest(f.Value(FieldImportSharedFolder)))
}

// OnUpdate runs the Calibre update.
func (f *SettingsForm) OnUpdate(ctx context.Context) (*Action, error) {
	return f.startAction(ctx, UpdateRequest())
}

func (f *SettingsForm) startAction(ctx context.Context, req ExecRequest) (*Action, error) {
	f.mu.Lock()
	switch f.state {
	case StateReady:
	case StateActionRunning:
		f.mu.Unlock()
		return nil, ErrActionRunning
	default:
		f.mu.Unlock()
		return nil, ErrNotReady
	}
	f.state = StateActionRunning
	f.mu.Unlock()

	task, err := f.executor.Start(ctx, req)
	if err != nil {
		f.mu.Lock()
		f.state = StateReady
		f.mu.Unlock()
		tool.DefaultLogger.Errorf("[Form] Failed to start %s.%s: %v", req.Service, req.Method, err)
		return nil, NewRPCError(req.Service, req.Method, err)
	}
	task.SetButtonDisabled(types.ButtonClose, true)

	action := &Action{
		Method: req.Method,
		Task:   task,
		done:   make(chan struct{}),
	}
	f.mu.Lock()
	f.action = action
	f.mu.Unlock()

	tool.DefaultLogger.Infof("[Form] Started %s.%s (job %s)", req.Service, req.Method, task.ID())
	go f.await(action)
	return action, nil
}

func (f *SettingsForm) await(a *Action) {
	out := <-a.Task.Done()
	if out.Err != nil {
		tool.DefaultLogger.Warnf("[Form] %s failed: %v", a.Method, out.Err)
		if f.messages != nil {
			f.messages.Error(out.Err)
		}
	} else {
		a.Task.AppendValue(DoneText)
	}

	f.mu.Lock()
	f.state = StateReady
	if f.action == a {
		f.action = nil
	}
	f.mu.Unlock()

	// the window reloads the form once close is enabled, so Ready must come first
	a.Task.SetButtonDisabled(types.ButtonClose, false)

	a.once.Do(func() {
		a.outcome = out
		close(a.done)
	})
}
