// Package exception provides the error types used across the archivador
// pipeline. Errors are categorized into two kinds: HTTP errors returned by the
// upstream API (carrying status code and response body for diagnostics) and
// unexpected errors covering network, decoding, transformation and I/O
// failures.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies a PipelineError.
type Kind int

const (
	// KindUnexpected is the catch-all kind for network, decoding,
	// transformation and I/O failures.
	KindUnexpected Kind = iota
	// KindHTTP indicates a non-success HTTP status from the upstream API.
	KindHTTP
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	default:
		return "unexpected"
	}
}

// PipelineError is the error type produced by pipeline stages.
// It holds the module where the error occurred, a message, the wrapped
// original error and the error kind. HTTP-kind errors additionally carry the
// status code and the server response body.
type PipelineError struct {
	// Module indicates the stage where the error occurred
	// (e.g. "openmeteo", "processor", "csv_writer").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StatusCode is the HTTP status code. Only set for KindHTTP.
	StatusCode int
	// ResponseBody is the upstream response body. Only set for KindHTTP.
	ResponseBody string
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string

	kind Kind
}

// NewUnexpectedError creates a PipelineError of kind KindUnexpected.
func NewUnexpectedError(module, message string, originalErr error) *PipelineError {
	return &PipelineError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
		kind:        KindUnexpected,
	}
}

// NewHTTPError creates a PipelineError of kind KindHTTP from a non-success
// HTTP response. The response body is retained so callers can surface the
// server's diagnostic message.
func NewHTTPError(module string, statusCode int, responseBody string) *PipelineError {
	return &PipelineError{
		Module:       module,
		Message:      fmt.Sprintf("unexpected status code %d from API", statusCode),
		OriginalErr:  errors.New(responseBody),
		StatusCode:   statusCode,
		ResponseBody: responseBody,
		StackTrace:   captureStack(),
		kind:         KindHTTP,
	}
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *PipelineError) Unwrap() error {
	return e.OriginalErr
}

// Kind returns the kind of this error.
func (e *PipelineError) Kind() Kind {
	return e.kind
}

// IsHTTPError reports whether err (or any error it wraps) is a
// PipelineError of kind KindHTTP.
func IsHTTPError(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.kind == KindHTTP
	}
	return false
}

// AsPipelineError extracts a *PipelineError from err's chain, or nil.
func AsPipelineError(err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// ExtractMessage extracts the error message string from an error.
// For PipelineError it returns the cleaner Message field; otherwise the
// standard Error() string.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	if pe := AsPipelineError(err); pe != nil {
		return pe.Message
	}
	return err.Error()
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
