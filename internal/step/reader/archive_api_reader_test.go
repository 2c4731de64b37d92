package reader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/metrics"
	"github.com/clima-cdmx/archivador/internal/openmeteo"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/step/reader"
	"github.com/clima-cdmx/archivador/pkg/util/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveBody = `{
  "latitude": 19.5,
  "longitude": -99.125,
  "timezone": "America/Mexico_City",
  "hourly": {
    "time": ["2024-01-01T00:00", "2024-01-01T01:00"],
    "temperature_2m": [14.2, 13.8],
    "relative_humidity_2m": [61, 63],
    "dewpoint_2m": [6.8, 6.9],
    "pressure_msl": [779.4, 779.1],
    "precipitation": [0, 0.1],
    "wind_speed_10m": [2.5, 3.1],
    "wind_gusts_10m": [5.1, 6.2],
    "wind_direction_10m": [45, 90],
    "weathercode": [3, 61]
  }
}`

func newReader(t *testing.T, handler http.HandlerFunc) *reader.ArchiveAPIReader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.Archivador.Request.APIEndpoint = server.URL
	cfg.Archivador.Request.EndDate = "2024-01-02"
	client := openmeteo.NewClientFromConfig(cfg)
	return reader.NewArchiveAPIReader(cfg, client, metrics.NewNoOpRecorder())
}

func TestArchiveAPIReaderYieldsOneRowPerHour(t *testing.T) {
	r := newReader(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(archiveBody))
	})
	ctx := context.Background()

	require.NoError(t, r.Open(ctx))

	first, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00", first.Time)
	assert.Equal(t, 2.5, first.WindSpeed10M)
	assert.Equal(t, 19.5, first.Latitude)

	second, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T01:00", second.Time)

	_, err = r.Read(ctx)
	assert.True(t, errors.Is(err, pipeline.ErrNoMoreItems))

	require.NoError(t, r.Close(ctx))
}

func TestArchiveAPIReaderOpenFailsOnHTTPError(t *testing.T) {
	r := newReader(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"reason":"Invalid date range"}`, http.StatusBadRequest)
	})
	ctx := context.Background()

	err := r.Open(ctx)
	require.Error(t, err)
	perr := exception.AsPipelineError(err)
	require.NotNil(t, perr)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)

	// An unopened reader has nothing to yield.
	_, err = r.Read(ctx)
	assert.True(t, errors.Is(err, pipeline.ErrNoMoreItems))
}

func TestArchiveAPIReaderReadAfterCloseIsExhausted(t *testing.T) {
	r := newReader(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(archiveBody))
	})
	ctx := context.Background()

	require.NoError(t, r.Open(ctx))
	require.NoError(t, r.Close(ctx))

	_, err := r.Read(ctx)
	assert.True(t, errors.Is(err, pipeline.ErrNoMoreItems))
}

var _ pipeline.ItemReader[entity.RawObservation] = (*reader.ArchiveAPIReader)(nil)
