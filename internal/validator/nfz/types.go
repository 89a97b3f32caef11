// Package nfz adapts flight submissions to the external no-fly-zone lookup
// tool and classifies its responses. The tool runs as a child process and
// speaks JSON-RPC 2.0 over its stdio, one message per line.
package nfz

import (
	"context"
	"fmt"
)

// Reference datum values understood by the lookup tool.
const (
	DatumAMSL  = 1 // above mean sea level (default)
	DatumAGL   = 2 // above ground level
	DatumWGS84 = 3
)

// ToolName is the lookup tool invoked on the NFZ server.
const ToolName = "validate-nfz"

// Coordinates is the geometric part of a lookup request.
type Coordinates struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Altitude       float64 `json:"altitude"`
	ReferenceDatum int     `json:"referenceDatum"`
}

// Request is the lookup request shape. SearchRadius is in kilometers.
type Request struct {
	Coordinates  Coordinates `json:"coordinates"`
	SearchRadius float64     `json:"searchRadius"`
}

// Invoker performs one NFZ lookup round-trip. Implementations own the
// underlying connection; Close releases it and is safe to call on a client
// that never connected.
type Invoker interface {
	CallValidate(ctx context.Context, req Request) (any, error)
	Close() error
}

// ToolError is returned by an Invoker when the tool itself reported a
// failure (as opposed to the transport breaking).
type ToolError struct {
	Code    int
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error %d: %s", e.Code, e.Message)
}
