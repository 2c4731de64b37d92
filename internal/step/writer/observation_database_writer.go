package writer

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/store"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const dbWriterModule = "observation_database_writer"

// ObservationDatabaseWriter persists observations to the relational sink.
// Rows are buffered during the run and inserted in a single transaction on
// Close, so a failed run leaves the table untouched. Re-runs over the same
// range upsert on the (time, latitude, longitude) key.
type ObservationDatabaseWriter struct {
	conn     *store.Connection
	bulkSize int
	runID    string

	collectedAt time.Time
	buffer      []entity.ObservacionRecord
}

// NewObservationDatabaseWriter creates a database writer bound to conn.
// A non-positive bulkSize falls back to 500.
func NewObservationDatabaseWriter(conn *store.Connection, bulkSize int, runID string) *ObservationDatabaseWriter {
	if bulkSize <= 0 {
		bulkSize = 500
	}
	return &ObservationDatabaseWriter{
		conn:     conn,
		bulkSize: bulkSize,
		runID:    runID,
	}
}

// Open resets the buffer and stamps the collection time for the run.
func (w *ObservationDatabaseWriter) Open(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	w.buffer = w.buffer[:0]
	w.collectedAt = time.Now()
	return nil
}

// Write buffers one chunk of observations as database records.
func (w *ObservationDatabaseWriter) Write(ctx context.Context, items []entity.Observation) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	for i := range items {
		w.buffer = append(w.buffer, items[i].ToRecord(w.runID, w.collectedAt))
	}
	return nil
}

// Close inserts all buffered records inside one transaction.
func (w *ObservationDatabaseWriter) Close(ctx context.Context) error {
	if len(w.buffer) == 0 {
		logger.Debugf("ObservationDatabaseWriter: no records buffered, nothing to commit.")
		return nil
	}

	err := w.conn.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "time"}, {Name: "latitude"}, {Name: "longitude"},
			},
			UpdateAll: true,
		}).CreateInBatches(w.buffer, w.bulkSize).Error
	})
	if err != nil {
		return exception.NewUnexpectedError(dbWriterModule, "failed to bulk insert observations", err)
	}

	logger.Infof("Persisted %d observations to %s (connection '%s').",
		len(w.buffer), entity.ObservacionRecord{}.TableName(), w.conn.Name())
	w.buffer = nil
	return nil
}

// Abort discards the buffered records. Nothing reached the database.
func (w *ObservationDatabaseWriter) Abort(ctx context.Context) error {
	w.buffer = nil
	return nil
}

var _ pipeline.ItemWriter[entity.Observation] = (*ObservationDatabaseWriter)(nil)
