// Package errors implements the exhaustive error-kind model used across the
// pipeline: decorators, sinks, and the router all return *PipelineError
// values carrying a Kind instead of ad-hoc sentinel errors.
package errors

import (
	"fmt"
	"runtime"
	"time"
)

// Kind enumerates every error classification the pipeline can produce.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindQueueFull       Kind = "queue_full"
	KindQueueStopped    Kind = "queue_stopped"
	KindIoError         Kind = "io_error"
	KindRotationFailed  Kind = "rotation_failed"
	KindEncryptionFailed Kind = "encryption_failed"
	KindPathTraversal   Kind = "path_traversal"
	KindPermissionDenied Kind = "permission_denied"
	KindFormatError     Kind = "format_error"
	KindNotRunning      Kind = "not_running"
)

// PipelineError is the standardized error type returned by sinks, decorators,
// the router, and the front-door logger.
type PipelineError struct {
	Kind       Kind
	Message    string
	Component  string
	Operation  string
	Cause      error
	StackTrace string
	Metadata   map[string]interface{}
	Timestamp  time.Time
}

// New creates a new pipeline error of the given kind.
func New(kind Kind, component, operation, message string) *PipelineError {
	_, file, line, _ := runtime.Caller(1)

	return &PipelineError{
		Kind:       kind,
		Message:    message,
		Component:  component,
		Operation:  operation,
		StackTrace: fmt.Sprintf("%s:%d", file, line),
		Metadata:   make(map[string]interface{}),
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Component, e.Operation, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Wrap attaches a causing error and returns the receiver for chaining.
func (e *PipelineError) Wrap(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// WithMetadata attaches a diagnostic key/value pair.
func (e *PipelineError) WithMetadata(key string, value interface{}) *PipelineError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ToMap converts the error to a map suitable for structured logging fields.
func (e *PipelineError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_kind":      string(e.Kind),
		"error_message":   e.Message,
		"error_component": e.Component,
		"error_operation": e.Operation,
		"error_timestamp": e.Timestamp,
	}
	if e.Cause != nil {
		result["error_cause"] = e.Cause.Error()
	}
	for k, v := range e.Metadata {
		result[fmt.Sprintf("error_meta_%s", k)] = v
	}
	return result
}

// Is reports whether target is a *PipelineError with the same Kind, so
// callers can use errors.Is(err, errors.New(KindQueueFull, "", "", "")).
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Convenience constructors, one per component that originates that kind.

func InvalidArgument(component, operation, message string) *PipelineError {
	return New(KindInvalidArgument, component, operation, message)
}

func QueueFull(component, operation, message string) *PipelineError {
	return New(KindQueueFull, component, operation, message)
}

func QueueStopped(component, operation, message string) *PipelineError {
	return New(KindQueueStopped, component, operation, message)
}

func IoError(component, operation, message string) *PipelineError {
	return New(KindIoError, component, operation, message)
}

func RotationFailed(component, operation, message string) *PipelineError {
	return New(KindRotationFailed, component, operation, message)
}

func EncryptionFailed(component, operation, message string) *PipelineError {
	return New(KindEncryptionFailed, component, operation, message)
}

func PathTraversal(component, operation, message string) *PipelineError {
	return New(KindPathTraversal, component, operation, message)
}

func PermissionDenied(component, operation, message string) *PipelineError {
	return New(KindPermissionDenied, component, operation, message)
}

func FormatError(component, operation, message string) *PipelineError {
	return New(KindFormatError, component, operation, message)
}

func NotRunning(component, operation, message string) *PipelineError {
	return New(KindNotRunning, component, operation, message)
}

// Is reports whether err is a *PipelineError of the given kind.
func Is(err error, kind Kind) bool {
	pe, ok := err.(*PipelineError)
	if !ok {
		return false
	}
	return pe.Kind == kind
}

// As extracts a *PipelineError from err, if it is one.
func As(err error) (*PipelineError, bool) {
	pe, ok := err.(*PipelineError)
	return pe, ok
}
