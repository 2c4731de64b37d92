// Package storage defines the interfaces for output storage backends. The
// abstraction lets export sinks write through a unified API regardless of
// where the files land.
package storage

import (
	"context"
	"io"
)

// Connection represents a storage backend connection.
type Connection interface {
	// Upload writes data to the given object name. Implementations must
	// publish the object atomically: a reader never observes a partially
	// written object.
	Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error
	// Download opens the named object for reading. The returned ReadCloser
	// must be closed by the caller.
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	// Close releases any resources held by the connection.
	Close() error
	// Type returns the backend type identifier (e.g. "local").
	Type() string
	// Name returns the configured name of this connection.
	Name() string
}

// Provider manages named storage connections.
type Provider interface {
	// GetConnection retrieves (or lazily creates) the named connection.
	GetConnection(name string) (Connection, error)
	// CloseAll closes every connection managed by this provider.
	CloseAll() error
	// Type returns the backend type this provider handles.
	Type() string
}

// Config holds configuration for a single storage connection.
type Config struct {
	Type    string `yaml:"type"`     // Backend type (e.g. "local").
	BaseDir string `yaml:"base_dir"` // Base directory for local operations.
}
