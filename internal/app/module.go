package app

import (
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/metrics"
	"github.com/clima-cdmx/archivador/internal/openmeteo"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/step/processor"
	"github.com/clima-cdmx/archivador/internal/step/reader"
)

const stepName = "observaciones_horarias"

// NewRunID mints the identifier that tags all output of this run.
func NewRunID() pipeline.RunID {
	return pipeline.RunID(uuid.NewString())
}

// NewArchiveRunner assembles the chunk runner for the archive step.
func NewArchiveRunner(
	cfg *config.Config,
	runID pipeline.RunID,
	rd *reader.ArchiveAPIReader,
	proc *processor.ObservationTransformProcessor,
	writers []pipeline.ItemWriter[entity.Observation],
	recorder metrics.Recorder,
	tracer metrics.Tracer,
) *pipeline.Runner[entity.RawObservation, entity.Observation] {
	return pipeline.NewRunner[entity.RawObservation, entity.Observation](
		stepName,
		string(runID),
		rd,
		proc,
		writers,
		cfg.Archivador.Pipeline.ChunkSize,
		recorder,
		tracer,
	)
}

// Module provides the run identity, the archive API client and the assembled
// runner to the Fx container.
var Module = fx.Options(
	fx.Provide(NewRunID),
	fx.Provide(openmeteo.NewClientFromConfig),
	fx.Provide(NewArchiveRunner),
)
