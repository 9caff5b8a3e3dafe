package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/tool"
	"github.com/moyoez/calibre-panel/types"
)

const (
	ShareMgmtService       = "ShareMgmt"
	EnumerateSharedFolders = "enumerateSharedFolders"
)

var ErrUnknownService = errors.New("unknown service")

// Call dispatches an RPC request by service and method name.
// Failures are always *form.RPCError.
func (s *Service) Call(ctx context.Context, service, method string, params json.RawMessage) (any, error) {
	tool.DefaultLogger.Debugf("[RPC] %s.%s", service, method)

	switch service {
	case form.RPCService:
	case ShareMgmtService:
		if method == EnumerateSharedFolders {
			return s.folders.List(), nil
		}
		return nil, unknownMethod(service, method)
	default:
		return nil, &form.RPCError{
			Service: service,
			Method:  method,
			Message: fmt.Sprintf("Service '%s' does not exist", service),
			Err:     ErrUnknownService,
		}
	}

	switch method {
	case form.RPCGetMethod:
		return s.GetSettings(ctx)
	case form.RPCSetMethod:
		var rec types.Settings
		if err := decodeParams(params, &rec); err != nil {
			return nil, form.NewRPCError(service, method, err)
		}
		if err := s.SetSettings(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	case form.RPCImportMethod:
		var p types.ImportParams
		if err := decodeParams(params, &p); err != nil {
			return nil, form.NewRPCError(service, method, err)
		}
		return s.StartImport(ctx, p.SharedFolderRef)
	case form.RPCUpdateMethod:
		return s.StartUpdate(ctx)
	}
	return nil, unknownMethod(service, method)
}

func unknownMethod(service, method string) *form.RPCError {
	return &form.RPCError{
		Service: service,
		Method:  method,
		Message: fmt.Sprintf("Method '%s' does not exist in service '%s'", method, service),
		Err:     execute.ErrUnknownMethod,
	}
}
