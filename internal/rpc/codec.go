// Package rpc holds the wire contract shared by the connect server and the
// fasthttp client: procedure names, request and response messages, and the
// JSON codec both sides register.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

const codecName = "json"

// Codec marshals plain Go structs as JSON. It replaces connect's protojson
// codec under the same name so unary calls work without generated messages.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return codecName }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// ErrorBody is the connect protocol error envelope for unary calls.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
