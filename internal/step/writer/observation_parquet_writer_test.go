package writer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/step/writer"
	"github.com/clima-cdmx/archivador/internal/storage"
	"github.com/clima-cdmx/archivador/internal/storage/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalConnection(t *testing.T) (storage.Connection, string) {
	t.Helper()
	baseDir := t.TempDir()
	conn, err := local.NewLocalAdapter(storage.Config{Type: "local", BaseDir: baseDir}, "local")
	require.NoError(t, err)
	return conn, baseDir
}

func TestParquetWriterExportsDayPartitions(t *testing.T) {
	conn, baseDir := newLocalConnection(t)
	w := writer.NewObservationParquetWriter(conn, "output", "snappy", "run-1")
	ctx := context.Background()

	day1 := sampleObservation(10)
	day2 := sampleObservation(10)
	day2.Timestamp = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	day2.FechaHora = day2.Timestamp.Format(entity.TimeLayout)

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{day1, day2}))
	require.NoError(t, w.Close(ctx))

	for _, partition := range []string{"dt=2024-01-01", "dt=2024-01-02"} {
		path := filepath.Join(baseDir, "output", partition, "observaciones_run-1.parquet")
		data, err := os.ReadFile(path)
		require.NoError(t, err, partition)
		// Parquet files start and end with the PAR1 magic bytes.
		require.Greater(t, len(data), 8)
		assert.Equal(t, "PAR1", string(data[:4]))
		assert.Equal(t, "PAR1", string(data[len(data)-4:]))
	}
}

func TestParquetWriterEmptyRunUploadsNothing(t *testing.T) {
	conn, baseDir := newLocalConnection(t)
	w := writer.NewObservationParquetWriter(conn, "output", "snappy", "run-1")
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Close(ctx))

	_, err := os.Stat(filepath.Join(baseDir, "output"))
	assert.True(t, os.IsNotExist(err))
}

func TestParquetWriterAbortUploadsNothing(t *testing.T) {
	conn, baseDir := newLocalConnection(t)
	w := writer.NewObservationParquetWriter(conn, "output", "snappy", "run-1")
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0)}))
	require.NoError(t, w.Abort(ctx))

	_, err := os.Stat(filepath.Join(baseDir, "output"))
	assert.True(t, os.IsNotExist(err))
}

func TestParquetWriterRejectsUnknownCompression(t *testing.T) {
	conn, _ := newLocalConnection(t)
	w := writer.NewObservationParquetWriter(conn, "output", "zstd9", "run-1")
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0)}))
	err := w.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid compression type")
}
