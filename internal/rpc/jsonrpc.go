// Package rpc defines the JSON-RPC 2.0 envelope used between the gateway and
// the MCP orchestrator.
package rpc

import (
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// Error codes as per JSON-RPC 2.0, plus the gateway's custom auth code.
const (
	ErrCodeParseError     = -32700
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
	ErrCodeUnauthorized   = -32001
)

// defaultID is substituted when a request carries no id; the response schema
// always includes one.
var defaultID = json.RawMessage("0")

// Request is an inbound JSON-RPC envelope. The id is kept raw so it can be
// echoed back verbatim whether the client sent a string or a number.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response is an outbound JSON-RPC envelope. Exactly one of Result and Error
// is set; use NewResult or NewError rather than building one by hand.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewResult(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: normalizeID(id), Result: result}
}

func NewError(id json.RawMessage, code int, format string, args ...any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      normalizeID(id),
		Error:   &ErrorObject{Code: code, Message: fmt.Sprintf(format, args...)},
	}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 || string(id) == "null" {
		return defaultID
	}
	return id
}

// ParseRequest decodes a submission body. Some clients wrap the envelope in a
// "message" object, and some of those nest it one level further under "root";
// both layers are unwrapped. Unwrapping is bounded at those two known layers,
// never recursive.
func ParseRequest(body []byte) (*Request, error) {
	payload := unwrap(body)

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC envelope: %w", err)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("invalid JSON-RPC envelope: missing method")
	}
	req.ID = normalizeID(req.ID)
	return &req, nil
}

func unwrap(body []byte) []byte {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return body
	}
	inner, ok := outer["message"]
	if !ok {
		return body
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(inner, &nested); err != nil {
		return body
	}
	if root, ok := nested["root"]; ok {
		return root
	}
	return inner
}

// ParamsMap decodes the request params into a generic map; absent params
// yield an empty map.
func (r *Request) ParamsMap() (map[string]any, error) {
	if len(r.Params) == 0 || string(r.Params) == "null" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.Params, &m); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return m, nil
}
