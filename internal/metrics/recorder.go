// Package metrics provides abstract interfaces for recording run metrics and
// tracing, with no-op fallbacks and a Prometheus-backed implementation.
package metrics

import (
	"context"
	"time"
)

// RunStatus is the terminal status of an archive run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// RunExecution carries the identity and timing of one archive run for
// metric recording.
type RunExecution struct {
	RunID     string
	JobName   string
	StartTime time.Time
	EndTime   time.Time
	Status    RunStatus
}

// Recorder is an abstract interface for recording metrics of an archive run.
// It decouples the pipeline from the metrics backend so different backends
// (Prometheus, or none) can be plugged in.
type Recorder interface {
	// RecordRunStart records the start of a run.
	RecordRunStart(ctx context.Context, execution *RunExecution)
	// RecordRunEnd records the end of a run, including its terminal status.
	RecordRunEnd(ctx context.Context, execution *RunExecution)
	// RecordItemRead records the successful reading of an item.
	RecordItemRead(ctx context.Context, stepName string)
	// RecordItemProcess records the successful processing of an item.
	RecordItemProcess(ctx context.Context, stepName string)
	// RecordItemWrite records the successful writing of items.
	RecordItemWrite(ctx context.Context, stepName string, count int)
	// RecordChunkCommit records the commitment of a chunk.
	RecordChunkCommit(ctx context.Context, stepName string, count int)
	// RecordDuration records the execution time of a named operation.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// Tracer is an abstract interface for tracing run execution. It mirrors the
// span lifecycle of distributed tracing systems without binding to one.
type Tracer interface {
	// StartRunSpan starts a span for a run. The returned function ends the
	// span and should be deferred.
	StartRunSpan(ctx context.Context, execution *RunExecution) (context.Context, func())
	// RecordError records an error against the current span.
	RecordError(ctx context.Context, module string, err error)
	// RecordEvent records a named event with attributes.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
