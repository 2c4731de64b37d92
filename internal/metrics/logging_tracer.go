package metrics

import (
	"context"
	"time"

	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// LoggingTracer is a Tracer implementation that writes span lifecycle events
// to the application log. It stands in for a real tracing backend.
type LoggingTracer struct{}

// NewLoggingTracer creates a new instance of LoggingTracer.
func NewLoggingTracer() Tracer {
	return &LoggingTracer{}
}

// StartRunSpan logs the start of a run span and returns a function that logs
// its end with the elapsed time.
func (t *LoggingTracer) StartRunSpan(ctx context.Context, execution *RunExecution) (context.Context, func()) {
	start := time.Now()
	logger.Debugf("Trace: run span started (run_id: %s, job: %s)", execution.RunID, execution.JobName)
	return ctx, func() {
		logger.Debugf("Trace: run span ended (run_id: %s, elapsed: %s)", execution.RunID, time.Since(start))
	}
}

// RecordError logs an error against the current span.
func (t *LoggingTracer) RecordError(ctx context.Context, module string, err error) {
	logger.Errorf("Trace: error in %s: %v", module, err)
}

// RecordEvent logs a named event with its attributes.
func (t *LoggingTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	logger.Debugf("Trace: event %s %v", name, attributes)
}

var _ Tracer = (*LoggingTracer)(nil)
