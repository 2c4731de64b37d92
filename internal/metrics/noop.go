package metrics

import (
	"context"
	"time"
)

// NoOpRecorder is a Recorder implementation that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new instance of NoOpRecorder.
func NewNoOpRecorder() Recorder {
	return &NoOpRecorder{}
}

func (r *NoOpRecorder) RecordRunStart(ctx context.Context, execution *RunExecution) {}
func (r *NoOpRecorder) RecordRunEnd(ctx context.Context, execution *RunExecution)   {}
func (r *NoOpRecorder) RecordItemRead(ctx context.Context, stepName string)         {}
func (r *NoOpRecorder) RecordItemProcess(ctx context.Context, stepName string)      {}
func (r *NoOpRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
}
func (r *NoOpRecorder) RecordChunkCommit(ctx context.Context, stepName string, count int) {}
func (r *NoOpRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ Recorder = (*NoOpRecorder)(nil)

// NoOpTracer is a Tracer implementation that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

func (t *NoOpTracer) StartRunSpan(ctx context.Context, execution *RunExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
