package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrActionRunning is returned when import or update is triggered while another action is still running.
	ErrActionRunning = errors.New("another action is still running")
	// ErrNotReady is returned when an operation needs the form in the Ready state.
	ErrNotReady = errors.New("form is not ready")
	// ErrUnknownField is returned for field names the form does not define.
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError is a field-level constraint violation, shown next to the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failing field of one validation pass.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual errors to errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

// Field returns the error reported for name, or nil.
func (v ValidationErrors) Field(name string) *ValidationError {
	for _, e := range v {
		if e.Field == name {
			return e
		}
	}
	return nil
}

// RPCError is a failure reported by the settings or execute backends.
// Message is displayed to the user verbatim.
type RPCError struct {
	Service string
	Method  string
	Message string
	Err     error
}

func (e *RPCError) Error() string {
	return e.Message
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// NewRPCError wraps err as an RPCError for service.method. An existing RPCError is returned unchanged.
func NewRPCError(service, method string, err error) *RPCError {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &RPCError{
		Service: service,
		Method:  method,
		Message: err.Error(),
		Err:     err,
	}
}
