package types

import (
	"context"
	"encoding/json"

	"tsserver-gateway/src/server/capabilities"
)

// Client defines the unified interface for backend server communication.
// This interface consolidates the client methods used throughout the
// application, including lifecycle management, command execution, and
// capability reporting.
type Client interface {
	// Start launches the backend server process and performs the protocol
	// handshake. Returns an error if the server fails to start or is
	// already running.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the backend server process.
	Stop() error

	// Execute sends a command to the backend and waits for the matching
	// response. The returned bytes are the raw response body; a response
	// with success=false is surfaced as a *common.BackendError.
	Execute(ctx context.Context, command string, args interface{}) (json.RawMessage, error)

	// DeferDiagnostics runs fn while in-flight diagnostics work is given
	// lower scheduling priority. Diagnostics resume when fn returns. This
	// is a priority policy, not preemption.
	DeferDiagnostics(ctx context.Context, fn func() error) error

	// OnEvent registers a handler for backend-initiated events. Handlers
	// are invoked on the response-reader goroutine and must not block.
	OnEvent(handler func(event string, body json.RawMessage))

	// APIVersion reports the protocol version negotiated with the backend.
	APIVersion() *capabilities.APIVersion

	// IsActive returns true if the backend is currently running.
	IsActive() bool
}

// ClientConfig holds the settings needed to launch a backend server.
type ClientConfig struct {
	Command    string
	Args       []string
	WorkingDir string
}
