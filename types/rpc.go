package types

import "encoding/json"

// RPCRequest is the body of POST /rpc.
type RPCRequest struct {
	Service string          `json:"service" binding:"required"`
	Method  string          `json:"method" binding:"required"`
	Params  json.RawMessage `json:"params"`
}

// RPCResponse wraps every /rpc reply. Error is empty on success.
type RPCResponse struct {
	Response any    `json:"response"`
	Error    string `json:"error,omitempty"`
}

// JobStarted is returned by the long running RPC methods.
type JobStarted struct {
	JobID string `json:"jobId"`
}
