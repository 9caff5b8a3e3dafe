package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

// Service is the "Calibre" RPC service: settings persistence plus the import
// and update methods run inside execute windows.
type Service struct {
	store     *Store
	folders   *Folders
	importCmd []string
	updateCmd []string
	applyCmd  []string
	executor  form.Executor
}

var _ form.SettingsService = (*Service)(nil)

// NewService builds the service from the application config.
func NewService(store *Store, folders *Folders, cfg types.AppConfig) *Service {
	return &Service{
		store:     store,
		folders:   folders,
		importCmd: cfg.ImportCommand,
		updateCmd: cfg.UpdateCommand,
		applyCmd:  cfg.ApplyCommand,
	}
}

// Register installs doImport and doUpdate on m and uses m to start them.
func (s *Service) Register(m *execute.Manager) {
	m.Handle(form.RPCService, form.RPCImportMethod, s.doImport)
	m.Handle(form.RPCService, form.RPCUpdateMethod, s.doUpdate)
	s.executor = m
}

// Folders returns the shared folder registry.
func (s *Service) Folders() *Folders {
	return s.folders
}

func (s *Service) GetSettings(ctx context.Context) (types.Settings, error) {
	rec, err := s.store.Load()
	if err != nil {
		tool.DefaultLogger.Errorf("[RPC] getSettings: %v", err)
		return rec, form.NewRPCError(form.RPCService, form.RPCGetMethod, err)
	}
	return rec, nil
}

// SetSettings validates and stores rec, then applies it.
func (s *Service) SetSettings(ctx context.Context, rec types.Settings) error {
	fail := func(err error) error {
		tool.DefaultLogger.Errorf("[RPC] setSettings: %v", err)
		return form.NewRPCError(form.RPCService, form.RPCSetMethod, err)
	}
	if err := form.ValidateRecord(rec); err != nil {
		return fail(err)
	}
	if rec.Enable {
		if _, err := s.folders.Resolve(rec.SharedFolderRef); err != nil {
			return fail(fmt.Errorf("data directory: %w", err))
		}
	}
	if err := s.store.Save(rec); err != nil {
		return fail(err)
	}
	tool.DefaultLogger.Infof("[RPC] Settings stored: enable=%v port=%d", rec.Enable, rec.Port)

	if err := s.apply(ctx, rec); err != nil {
		return fail(err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, rec types.Settings) error {
	if len(s.applyCmd) == 0 {
		return nil
	}
	vars := map[string]string{
		"enable":    strconv.FormatBool(rec.Enable),
		"port":      strconv.Itoa(rec.Port),
		"coversize": rec.EffectiveCoverSize(),
	}
	var out bytes.Buffer
	if err := runCommand(ctx, expandCommand(s.applyCmd, vars), &out); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("failed to apply settings: %w: %s", err, msg)
		}
		return fmt.Errorf("failed to apply settings: %w", err)
	}
	return nil
}

// StartImport opens an import window for the shared folder ref.
func (s *Service) StartImport(ctx context.Context, ref string) (types.JobStarted, error) {
	return s.start(ctx, form.ImportRequest(ref))
}

// StartUpdate opens an update window.
func (s *Service) StartUpdate(ctx context.Context) (types.JobStarted, error) {
	return s.start(ctx, form.UpdateRequest())
}

func (s *Service) start(ctx context.Context, req form.ExecRequest) (types.JobStarted, error) {
	if s.executor == nil {
		return types.JobStarted{}, form.NewRPCError(req.Service, req.Method, errors.New("execute windows are not available"))
	}
	task, err := s.executor.Start(ctx, req)
	if err != nil {
		return types.JobStarted{}, form.NewRPCError(req.Service, req.Method, err)
	}
	return types.JobStarted{JobID: task.ID()}, nil
}

func (s *Service) doImport(ctx context.Context, params any, out *execute.Output) error {
	var p types.ImportParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	source, err := s.folders.Resolve(p.SharedFolderRef)
	if err != nil {
		return fmt.Errorf("import folder: %w", err)
	}
	rec, err := s.store.Load()
	if err != nil {
		return err
	}
	library, err := s.folders.Resolve(rec.SharedFolderRef)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	fmt.Fprintf(out, "Importing books from %s into %s\n", source.Path, library.Path)
	argv := expandCommand(s.importCmd, map[string]string{
		"library":   library.Path,
		"source":    source.Path,
		"coversize": rec.EffectiveCoverSize(),
	})
	err = runCommand(ctx, argv, out)
	var se *startError
	if err == nil || errors.As(err, &se) || ctx.Err() != nil {
		return err
	}
	// calibredb exits non-zero when some books were skipped
	return out.Report(err)
}

func (s *Service) doUpdate(ctx context.Context, _ any, out *execute.Output) error {
	fmt.Fprintln(out, "Updating Calibre...")
	return runCommand(ctx, s.updateCmd, out)
}

// decodeParams converts in-process params or raw JSON into v.
func decodeParams(params any, v any) error {
	switch p := params.(type) {
	case nil:
		return nil
	case types.ImportParams:
		if dst, ok := v.(*types.ImportParams); ok {
			*dst = p
			return nil
		}
	case json.RawMessage:
		if len(p) == 0 {
			return nil
		}
		if err := sonic.Unmarshal(p, v); err != nil {
			return fmt.Errorf("invalid params: %w", err)
		}
		return nil
	}
	data, err := sonic.Marshal(params)
	if err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
