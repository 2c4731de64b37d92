package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/clima-cdmx/archivador/internal/metrics"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const moduleName = "pipeline"

// Summary describes a completed run.
type Summary struct {
	RunID        string
	ItemsRead    int
	ItemsWritten int
	Chunks       int
	Duration     time.Duration
}

// Runner drives one chunk-oriented run: it opens the reader and all writers,
// streams items through the processor in chunks, then commits every writer.
// On any failure the writers are aborted instead of closed, so a failed run
// leaves no partial output.
type Runner[I, O any] struct {
	stepName  string
	runID     string
	reader    ItemReader[I]
	processor ItemProcessor[I, O]
	writers   []ItemWriter[O]
	chunkSize int
	recorder  metrics.Recorder
	tracer    metrics.Tracer
}

// NewRunner assembles a Runner. A non-positive chunkSize falls back to 1000.
func NewRunner[I, O any](
	stepName string,
	runID string,
	reader ItemReader[I],
	processor ItemProcessor[I, O],
	writers []ItemWriter[O],
	chunkSize int,
	recorder metrics.Recorder,
	tracer metrics.Tracer,
) *Runner[I, O] {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Runner[I, O]{
		stepName:  stepName,
		runID:     runID,
		reader:    reader,
		processor: processor,
		writers:   writers,
		chunkSize: chunkSize,
		recorder:  recorder,
		tracer:    tracer,
	}
}

// Run executes the pipeline. The returned Summary is valid only when err is
// nil.
func (r *Runner[I, O]) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	execution := &metrics.RunExecution{
		RunID:     r.runID,
		JobName:   r.stepName,
		StartTime: start,
	}
	r.recorder.RecordRunStart(ctx, execution)
	ctx, endSpan := r.tracer.StartRunSpan(ctx, execution)
	defer endSpan()

	summary, err := r.run(ctx)

	execution.EndTime = time.Now()
	if err != nil {
		execution.Status = metrics.RunStatusFailed
		r.tracer.RecordError(ctx, moduleName, err)
	} else {
		execution.Status = metrics.RunStatusCompleted
		summary.Duration = execution.EndTime.Sub(start)
	}
	r.recorder.RecordRunEnd(ctx, execution)

	return summary, err
}

func (r *Runner[I, O]) run(ctx context.Context) (*Summary, error) {
	if err := r.reader.Open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.reader.Close(ctx); cerr != nil {
			logger.Warnf("Runner: failed to close reader: %v", cerr)
		}
	}()

	var opened []ItemWriter[O]
	for _, w := range r.writers {
		if err := w.Open(ctx); err != nil {
			r.abort(ctx, opened)
			return nil, err
		}
		opened = append(opened, w)
	}

	summary := &Summary{RunID: r.runID}
	chunk := make([]O, 0, r.chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		for _, w := range opened {
			if err := w.Write(ctx, chunk); err != nil {
				return err
			}
		}
		r.recorder.RecordItemWrite(ctx, r.stepName, len(chunk))
		r.recorder.RecordChunkCommit(ctx, r.stepName, len(chunk))
		summary.ItemsWritten += len(chunk)
		summary.Chunks++
		chunk = chunk[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			r.abort(ctx, opened)
			return nil, ctx.Err()
		default:
		}

		item, err := r.reader.Read(ctx)
		if errors.Is(err, ErrNoMoreItems) {
			break
		}
		if err != nil {
			r.abort(ctx, opened)
			return nil, err
		}
		r.recorder.RecordItemRead(ctx, r.stepName)
		summary.ItemsRead++

		out, err := r.processor.Process(ctx, item)
		if err != nil {
			r.abort(ctx, opened)
			return nil, err
		}
		r.recorder.RecordItemProcess(ctx, r.stepName)

		chunk = append(chunk, out)
		if len(chunk) >= r.chunkSize {
			if err := flush(); err != nil {
				r.abort(ctx, opened)
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		r.abort(ctx, opened)
		return nil, err
	}

	// Commit. A Close failure after this point still aborts the remaining
	// writers so no sink is left half-committed.
	var closeErrs *multierror.Error
	for i, w := range opened {
		if err := w.Close(ctx); err != nil {
			closeErrs = multierror.Append(closeErrs, err)
			r.abort(ctx, opened[i+1:])
			break
		}
	}
	if err := closeErrs.ErrorOrNil(); err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "failed to commit output", err)
	}

	return summary, nil
}

func (r *Runner[I, O]) abort(ctx context.Context, writers []ItemWriter[O]) {
	for _, w := range writers {
		if err := w.Abort(ctx); err != nil {
			logger.Warnf("Runner: failed to abort writer: %v", err)
		}
	}
}
