package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrJobNotFound   = errors.New("job not found")
	ErrNotStoppable  = errors.New("job cannot be stopped")
	ErrJobFinished   = errors.New("job already finished")
)

// MethodFunc runs a long running backend method, writing progress to out.
type MethodFunc func(ctx context.Context, params any, out *Output) error

// EventSink receives window updates of every job.
type EventSink interface {
	Broadcast(ev types.ExecEvent)
}

// Output is the writer handed to a running method.
type Output struct {
	io.Writer
	job *Job
}

// Report hands a non-fatal error to the window. It returns err unchanged unless
// the window was started with IgnoreErrors, in which case the error is only shown.
func (o *Output) Report(err error) error {
	if err == nil {
		return nil
	}
	if !o.job.req.IgnoreErrors {
		return err
	}
	tool.DefaultLogger.Warnf("[Exec] %s.%s (job %s): ignoring error: %v", o.job.req.Service, o.job.req.Method, o.job.id, err)
	o.job.AppendValue(err.Error())
	return nil
}

// Manager starts backend methods as jobs and keeps their windows around for a while.
// Running jobs never expire; a job enters the ttl cache when it finishes.
type Manager struct {
	mu       sync.RWMutex
	methods  map[string]MethodFunc
	running  map[string]*Job
	finished *ttlworker.Cache[string, *Job]
	sink     EventSink
}

// NewManager keeps finished jobs for ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		methods:  make(map[string]MethodFunc),
		running:  make(map[string]*Job),
		finished: ttlworker.NewCache[string, *Job](ttl),
	}
}

// SetSink sets where window updates are published.
func (m *Manager) SetSink(sink EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

// Handle registers fn as service.method.
func (m *Manager) Handle(service, method string, fn MethodFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[methodKey(service, method)] = fn
}

func methodKey(service, method string) string {
	return service + "." + method
}

// Start runs req in the background. The job outlives ctx; only Stop cancels it.
func (m *Manager) Start(ctx context.Context, req form.ExecRequest) (form.Task, error) {
	return m.StartJob(ctx, req)
}

// StartJob is Start returning the concrete job.
func (m *Manager) StartJob(ctx context.Context, req form.ExecRequest) (*Job, error) {
	m.mu.RLock()
	fn, ok := m.methods[methodKey(req.Service, req.Method)]
	sink := m.sink
	m.mu.RUnlock()
	if !ok {
		return nil, &form.RPCError{
			Service: req.Service,
			Method:  req.Method,
			Message: fmt.Sprintf("Method %s.%s does not exist", req.Service, req.Method),
			Err:     ErrUnknownMethod,
		}
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := newJob(tool.GenerateRandomUUID(), req, cancel, sink)
	m.mu.Lock()
	m.running[job.id] = job
	m.mu.Unlock()
	tool.DefaultLogger.Infof("[Exec] Starting %s.%s as job %s", req.Service, req.Method, job.id)

	go func() {
		defer cancel()
		err := m.run(jobCtx, fn, req.Params, job)
		if err != nil {
			tool.DefaultLogger.Errorf("[Exec] Job %s failed: %v", job.id, err)
		} else {
			tool.DefaultLogger.Infof("[Exec] Job %s finished", job.id)
		}
		m.finished.Set(job.id, job)
		m.mu.Lock()
		delete(m.running, job.id)
		m.mu.Unlock()
		job.finish(err)
	}()
	return job, nil
}

func (m *Manager) run(ctx context.Context, fn MethodFunc, params any, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("method panicked: %v", r)
		}
	}()
	return fn(ctx, params, &Output{Writer: job, job: job})
}

// Job looks up a job by id.
func (m *Manager) Job(id string) (*Job, bool) {
	m.mu.RLock()
	job, ok := m.running[id]
	m.mu.RUnlock()
	if ok {
		return job, true
	}
	job = m.finished.Get(id)
	return job, job != nil
}

// Stop cancels a running job unless its window hides the stop button.
func (m *Manager) Stop(id string) error {
	job, ok := m.Job(id)
	if !ok {
		return ErrJobNotFound
	}
	if !job.stoppable() {
		return ErrNotStoppable
	}
	if !job.Running() {
		return ErrJobFinished
	}
	tool.DefaultLogger.Infof("[Exec] Stopping job %s", id)
	job.cancel()
	return nil
}
