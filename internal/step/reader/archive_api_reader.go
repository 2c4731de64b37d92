// Package reader contains the input stage of the archive pipeline.
package reader

import (
	"context"
	"time"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/metrics"
	"github.com/clima-cdmx/archivador/internal/openmeteo"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// ArchiveAPIReader fetches the full historical range from the archive API on
// Open and then yields one zipped hourly row per Read call.
type ArchiveAPIReader struct {
	cfg      *config.Config
	client   *openmeteo.Client
	recorder metrics.Recorder
	loc      *time.Location

	archive      *entity.ArchiveResponse
	currentIndex int
}

// NewArchiveAPIReader creates an ArchiveAPIReader. The configured system
// timezone is used to resolve a relative end date; an unknown timezone falls
// back to UTC.
func NewArchiveAPIReader(cfg *config.Config, client *openmeteo.Client, recorder metrics.Recorder) *ArchiveAPIReader {
	loc, err := time.LoadLocation(cfg.Archivador.System.Timezone)
	if err != nil {
		logger.Warnf("Failed to load timezone '%s'. Falling back to UTC: %v", cfg.Archivador.System.Timezone, err)
		loc = time.UTC
	}
	return &ArchiveAPIReader{
		cfg:      cfg,
		client:   client,
		recorder: recorder,
		loc:      loc,
	}
}

// Open performs the archive API fetch. The end date is resolved at call time
// so a run without an explicit end date always covers up to yesterday.
func (r *ArchiveAPIReader) Open(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	req := r.cfg.Archivador.Request
	params := openmeteo.ArchiveParams{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		StartDate: req.StartDate,
		EndDate:   openmeteo.ResolveEndDate(req.EndDate, r.loc, time.Now()),
		Timezone:  req.Timezone,
	}

	start := time.Now()
	archive, err := r.client.FetchArchive(ctx, params)
	r.recorder.RecordDuration(ctx, "archive_api_call", time.Since(start), map[string]string{"endpoint": req.APIEndpoint})
	if err != nil {
		return err
	}

	r.archive = archive
	r.currentIndex = 0
	logger.Infof("Fetched %d hourly records (%s to %s).", archive.Hourly.Len(), params.StartDate, params.EndDate)
	return nil
}

// Read returns the next zipped hourly row, or ErrNoMoreItems when exhausted.
func (r *ArchiveAPIReader) Read(ctx context.Context) (entity.RawObservation, error) {
	select {
	case <-ctx.Done():
		return entity.RawObservation{}, ctx.Err()
	default:
	}

	if r.archive == nil || r.currentIndex >= r.archive.Hourly.Len() {
		return entity.RawObservation{}, pipeline.ErrNoMoreItems
	}

	row := r.archive.Hourly.Row(r.currentIndex, r.archive.Latitude, r.archive.Longitude)
	r.currentIndex++
	return row, nil
}

// Close releases the fetched data.
func (r *ArchiveAPIReader) Close(ctx context.Context) error {
	r.archive = nil
	r.currentIndex = 0
	return nil
}

var _ pipeline.ItemReader[entity.RawObservation] = (*ArchiveAPIReader)(nil)
