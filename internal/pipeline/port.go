// Package pipeline defines the chunk-oriented read/process/write contract and
// the runner that drives one archive run through it.
package pipeline

import (
	"context"
	"io"
)

// RunID identifies one archive run. It tags persisted rows, exported files
// and metrics so output from different runs can be told apart.
type RunID string

// ErrNoMoreItems signals that a reader is exhausted.
// Readers return io.EOF; the alias keeps call sites readable.
var ErrNoMoreItems = io.EOF

// ItemReader is the interface for a data reading stage.
// O is the type of item to be read.
type ItemReader[O any] interface {
	// Open acquires resources and performs the upstream fetch.
	Open(ctx context.Context) error
	// Read reads the next item. Returns ErrNoMoreItems when exhausted.
	Read(ctx context.Context) (O, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// ItemProcessor is the interface for an item processing stage.
// I is the type of input item, O is the type of output item.
type ItemProcessor[I, O any] interface {
	// Process transforms an input item into an output item.
	Process(ctx context.Context, item I) (O, error)
}

// ItemWriter is the interface for an output sink.
// I is the type of item to be written.
//
// Writers buffer or stage output between Open and Close; Close commits it.
// When a run fails, Close is never called and Abort runs instead, so a failed
// run leaves no partial output behind.
type ItemWriter[I any] interface {
	// Open prepares the sink for a run.
	Open(ctx context.Context) error
	// Write accepts one chunk of items.
	Write(ctx context.Context, items []I) error
	// Close commits the staged output and releases resources.
	Close(ctx context.Context) error
	// Abort discards staged output after a failed run.
	Abort(ctx context.Context) error
}
