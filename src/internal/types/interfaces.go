package types

import (
	"context"
	"encoding/json"
)

// SessionParams carries the editor-supplied initialize fields a backend
// handshake depends on: the workspace root the editor actually opened and
// that backend's settings sections. Zero values fall back to the process
// working directory and no settings.
type SessionParams struct {
	RootURI          string
	RootPath         string
	WorkspaceFolders json.RawMessage
	Settings         map[string]interface{}
}

// BackendClient defines the unified interface for one backend language server.
// It consolidates lifecycle management, request/notification round-trips and
// push-stream registration; the proxy core never reaches below this surface.
type BackendClient interface {
	// Start spawns the backend server process and performs the LSP
	// initialize/initialized handshake rooted at the editor's workspace.
	// Returns an error if the server fails to start, fails to initialize,
	// or is already running.
	Start(ctx context.Context, session SessionParams) error

	// Stop attempts a graceful shutdown/exit sequence and forcibly terminates
	// the process after a bounded grace period if it has not exited.
	Stop() error

	// SendRequest sends a JSON-RPC request and waits for the matching
	// response, returned as the raw result payload. Fails if the client is
	// not started or not yet initialized (except for initialize itself).
	SendRequest(ctx context.Context, method string, params interface{}) (json.RawMessage, error)

	// SendNotification sends a JSON-RPC notification without expecting a
	// response. A no-op with a warning if the client is not started.
	SendNotification(ctx context.Context, method string, params interface{}) error

	// OnNotification registers a handler for server-initiated notifications
	// of the given method. Diagnostics pushed by the backend arrive here as
	// textDocument/publishDiagnostics and are forwarded verbatim downstream.
	OnNotification(method string, handler func(params json.RawMessage))

	// IsActive returns true if the backend process is running and initialized.
	IsActive() bool
}

// Position represents a text position with line and character information.
// Line and character are zero-based; character counts UTF-16 code units,
// following LSP convention.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a text range with start and end positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Before reports whether p is strictly before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Contains reports whether pos falls within r, inclusive on both ends.
func (r Range) Contains(pos Position) bool {
	if pos.Before(r.Start) {
		return false
	}
	return !r.End.Before(pos)
}
