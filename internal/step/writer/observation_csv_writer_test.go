package writer_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/step/writer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObservation(hour int) entity.Observation {
	ts := time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
	return entity.Observation{
		FechaHora:          ts.Format(entity.TimeLayout),
		Timestamp:          ts,
		TemperaturaC:       14.2,
		HumedadPct:         61,
		PuntoRocioC:        6.8,
		PresionHPa:         779.4,
		PrecipitacionMm:    0,
		VientoVelocidadKmh: 36,
		VientoRafagaKmh:    18.36,
		VientoDireccionDeg: 45,
		CodigoClimaWMO:     3,
		Latitude:           19.5,
		Longitude:          -99.125,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clima.csv")
	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0), sampleObservation(1)}))
	require.NoError(t, w.Close(ctx))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, entity.CSVColumns, records[0])
	assert.Equal(t, "2024-01-01T00:00", records[1][0])
	assert.Equal(t, "36", records[1][6])
	assert.Equal(t, 2, w.RowCount())
}

func TestCSVWriterEmptyRunProducesHeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clima.csv")
	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Close(ctx))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, entity.CSVColumns, records[0])
}

func TestCSVWriterAbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clima.csv")
	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0)}))
	require.NoError(t, w.Abort(ctx))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// No temp files left either.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVWriterAbortPreservesPreviousOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clima.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()
	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0)}))
	require.NoError(t, w.Abort(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestCSVWriterReplacesPreviousOutputOnCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clima.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()
	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, []entity.Observation{sampleObservation(0)}))
	require.NoError(t, w.Close(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(entity.CSVColumns, ",")))
}

func TestCSVWriterManyRowsKmhColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clima.csv")
	w := writer.NewObservationCSVWriter(path)
	ctx := context.Background()

	var batch []entity.Observation
	for i := 0; i < 48; i++ {
		obs := sampleObservation(i % 24)
		obs.VientoVelocidadKmh = 10.0 * 3.6
		batch = append(batch, obs)
	}

	require.NoError(t, w.Open(ctx))
	require.NoError(t, w.Write(ctx, batch))
	require.NoError(t, w.Close(ctx))

	records := readCSV(t, path)
	require.Len(t, records, 49)
	for _, row := range records[1:] {
		assert.Equal(t, "36", row[6])
	}
}
