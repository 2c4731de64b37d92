package entity_test

import (
	"testing"
	"time"

	"github.com/clima-cdmx/archivador/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservacionRecordTableName(t *testing.T) {
	assert.Equal(t, "observaciones_horarias", entity.ObservacionRecord{}.TableName())
}

func TestHourlyBlockValidate(t *testing.T) {
	h := entity.HourlyBlock{
		Time:               []string{"2024-01-01T00:00", "2024-01-01T01:00"},
		Temperature2M:      []float64{10, 11},
		RelativeHumidity2M: []float64{50, 51},
		DewPoint2M:         []float64{2, 3},
		PressureMsl:        []float64{780, 781},
		Precipitation:      []float64{0, 0.2},
		WindSpeed10M:       []float64{5, 6},
		WindGusts10M:       []float64{8, 9},
		WindDirection10M:   []float64{180, 190},
		WeatherCode:        []int{0, 61},
	}
	require.NoError(t, h.Validate())
	assert.Equal(t, 2, h.Len())

	h.Precipitation = h.Precipitation[:1]
	err := h.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precipitation")
}

func TestHourlyBlockRow(t *testing.T) {
	h := entity.HourlyBlock{
		Time:               []string{"2024-01-01T00:00"},
		Temperature2M:      []float64{14.2},
		RelativeHumidity2M: []float64{61},
		DewPoint2M:         []float64{6.8},
		PressureMsl:        []float64{779.4},
		Precipitation:      []float64{0},
		WindSpeed10M:       []float64{2.5},
		WindGusts10M:       []float64{5.1},
		WindDirection10M:   []float64{45},
		WeatherCode:        []int{3},
	}
	row := h.Row(0, 19.5047, -99.1469)
	assert.Equal(t, "2024-01-01T00:00", row.Time)
	assert.Equal(t, 14.2, row.Temperature2M)
	assert.Equal(t, 3, row.WeatherCode)
	assert.Equal(t, 19.5047, row.Latitude)
	assert.Equal(t, -99.1469, row.Longitude)
}

func TestObservationCSVRecord(t *testing.T) {
	o := entity.Observation{
		FechaHora:          "2024-01-01T00:00",
		TemperaturaC:       14.2,
		HumedadPct:         61,
		PuntoRocioC:        6.8,
		PresionHPa:         779.4,
		PrecipitacionMm:    0,
		VientoVelocidadKmh: 36,
		VientoRafagaKmh:    18.36,
		VientoDireccionDeg: 45,
		CodigoClimaWMO:     3,
	}
	rec := o.CSVRecord()
	require.Len(t, rec, len(entity.CSVColumns))
	assert.Equal(t, "2024-01-01T00:00", rec[0])
	assert.Equal(t, "14.2", rec[1])
	assert.Equal(t, "61", rec[2])
	assert.Equal(t, "0", rec[5])
	assert.Equal(t, "36", rec[6])
	assert.Equal(t, "18.36", rec[7])
	assert.Equal(t, "3", rec[9])
}

func TestObservationToRecord(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	collected := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	o := entity.Observation{
		FechaHora:    "2024-01-01T00:00",
		Timestamp:    ts,
		TemperaturaC: 14.2,
		Latitude:     19.5047,
		Longitude:    -99.1469,
	}
	rec := o.ToRecord("run-1", collected)
	assert.Equal(t, ts, rec.Time)
	assert.Equal(t, 19.5047, rec.Latitude)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, collected, rec.CollectedAt)
}
