package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NoContentMessage is the message tsserver-style backends attach to a
// response that succeeded but has nothing to offer. It is an empty result,
// not a failure.
const NoContentMessage = "No content available"

// BackendError represents a failure reported by the backend for a single
// command round trip.
type BackendError struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error for %s: %s", e.Command, e.Message)
}

// NewBackendError creates a backend error for the given command
func NewBackendError(command, message string) *BackendError {
	return &BackendError{Command: command, Message: message}
}

// ProcessError represents backend server process errors
type ProcessError struct {
	Command string `json:"command"`
	Cause   error  `json:"cause,omitempty"`
	Type    string `json:"type"` // "start", "stop", "communication"
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process error (%s): %s - %v", e.Type, e.Command, e.Cause)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NewProcessError creates a new process error for backend server operations
func NewProcessError(command, errorType string, cause error) *ProcessError {
	return &ProcessError{Command: command, Type: errorType, Cause: cause}
}

// IsNoContentError checks whether the error is the backend's explicit
// "nothing to offer" response.
func IsNoContentError(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return strings.EqualFold(be.Message, NoContentMessage)
	}
	return false
}

// IsCancellationError checks if the error is a cancellation error
func IsCancellationError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "canceled") ||
		strings.Contains(errMsg, "cancelled") ||
		strings.Contains(errMsg, "context canceled")
}

// IsBackendError checks if the error was reported by the backend itself
// rather than the transport.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// WrapProcessingError wraps an error with operation context for better error messages
func WrapProcessingError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}
