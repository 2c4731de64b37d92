package entity

import (
	"fmt"
	"strconv"
	"time"
)

// TimeLayout is the timestamp layout used by the archive API and by the CSV
// output (minute precision, no seconds, no offset).
const TimeLayout = "2006-01-02T15:04"

// HourlyBlock represents the parallel hourly arrays returned by the
// Open-Meteo archive API. All slices have equal length; index i across the
// slices describes the same hour.
type HourlyBlock struct {
	Time               []string  `json:"time"`
	Temperature2M      []float64 `json:"temperature_2m"`
	RelativeHumidity2M []float64 `json:"relative_humidity_2m"`
	DewPoint2M         []float64 `json:"dewpoint_2m"`
	PressureMsl        []float64 `json:"pressure_msl"`
	Precipitation      []float64 `json:"precipitation"`
	WindSpeed10M       []float64 `json:"wind_speed_10m"`
	WindGusts10M       []float64 `json:"wind_gusts_10m"`
	WindDirection10M   []float64 `json:"wind_direction_10m"`
	WeatherCode        []int     `json:"weathercode"`
}

// Len returns the number of hourly entries, taken from the time axis.
func (h *HourlyBlock) Len() int {
	return len(h.Time)
}

// Validate checks that every variable slice matches the time axis length.
// The archive API guarantees parallel arrays; a mismatch means a truncated
// or malformed response.
func (h *HourlyBlock) Validate() error {
	n := len(h.Time)
	for name, l := range map[string]int{
		"temperature_2m":       len(h.Temperature2M),
		"relative_humidity_2m": len(h.RelativeHumidity2M),
		"dewpoint_2m":          len(h.DewPoint2M),
		"pressure_msl":         len(h.PressureMsl),
		"precipitation":        len(h.Precipitation),
		"wind_speed_10m":       len(h.WindSpeed10M),
		"wind_gusts_10m":       len(h.WindGusts10M),
		"wind_direction_10m":   len(h.WindDirection10M),
		"weathercode":          len(h.WeatherCode),
	} {
		if l != n {
			return fmt.Errorf("hourly array %q has %d entries, time axis has %d", name, l, n)
		}
	}
	return nil
}

// ArchiveResponse represents the raw historical weather data retrieved from
// the Open-Meteo archive API.
type ArchiveResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Timezone  string      `json:"timezone"`
	Hourly    HourlyBlock `json:"hourly"`
}

// RawObservation is one zipped row of the hourly arrays, still in API units
// (wind in m/s, timestamps as local strings).
type RawObservation struct {
	Time               string
	Temperature2M      float64
	RelativeHumidity2M float64
	DewPoint2M         float64
	PressureMsl        float64
	Precipitation      float64
	WindSpeed10M       float64
	WindGusts10M       float64
	WindDirection10M   float64
	WeatherCode        int
	Latitude           float64
	Longitude          float64
}

// Row extracts the zipped row at index i. Callers must ensure the block
// passed Validate and that i < Len().
func (h *HourlyBlock) Row(i int, latitude, longitude float64) RawObservation {
	return RawObservation{
		Time:               h.Time[i],
		Temperature2M:      h.Temperature2M[i],
		RelativeHumidity2M: h.RelativeHumidity2M[i],
		DewPoint2M:         h.DewPoint2M[i],
		PressureMsl:        h.PressureMsl[i],
		Precipitation:      h.Precipitation[i],
		WindSpeed10M:       h.WindSpeed10M[i],
		WindGusts10M:       h.WindGusts10M[i],
		WindDirection10M:   h.WindDirection10M[i],
		WeatherCode:        h.WeatherCode[i],
		Latitude:           latitude,
		Longitude:          longitude,
	}
}

// CSVColumns is the CSV header, in output order. Wind speeds are km/h after
// conversion; the remaining units match the API response.
var CSVColumns = []string{
	"fecha_hora",
	"temperatura_C",
	"humedad_%",
	"punto_rocio_C",
	"presion_hPa",
	"precipitacion_mm",
	"viento_velocidad_kmh",
	"viento_rafaga_kmh",
	"viento_direccion_°",
	"codigo_clima_wmo",
}

// Observation is the transformed output row: wind converted to km/h and
// columns renamed for the Spanish-language CSV.
type Observation struct {
	// FechaHora is the local timestamp string, minute precision.
	FechaHora string
	// Timestamp is FechaHora parsed in the configured timezone, used by the
	// database and Parquet sinks.
	Timestamp          time.Time
	TemperaturaC       float64
	HumedadPct         float64
	PuntoRocioC        float64
	PresionHPa         float64
	PrecipitacionMm    float64
	VientoVelocidadKmh float64
	VientoRafagaKmh    float64
	VientoDireccionDeg float64
	CodigoClimaWMO     int
	Latitude           float64
	Longitude          float64
}

// CSVRecord renders the observation as a CSV record matching CSVColumns.
// Floats use the shortest representation that round-trips.
func (o *Observation) CSVRecord() []string {
	return []string{
		o.FechaHora,
		formatFloat(o.TemperaturaC),
		formatFloat(o.HumedadPct),
		formatFloat(o.PuntoRocioC),
		formatFloat(o.PresionHPa),
		formatFloat(o.PrecipitacionMm),
		formatFloat(o.VientoVelocidadKmh),
		formatFloat(o.VientoRafagaKmh),
		formatFloat(o.VientoDireccionDeg),
		strconv.Itoa(o.CodigoClimaWMO),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ObservacionRecord represents a transformed observation persisted to the
// relational sink.
type ObservacionRecord struct {
	Time               time.Time `gorm:"column:time;primaryKey"`
	Latitude           float64   `gorm:"column:latitude;primaryKey"`
	Longitude          float64   `gorm:"column:longitude;primaryKey"`
	TemperaturaC       float64   `gorm:"column:temperatura_c"`
	HumedadPct         float64   `gorm:"column:humedad_pct"`
	PuntoRocioC        float64   `gorm:"column:punto_rocio_c"`
	PresionHPa         float64   `gorm:"column:presion_hpa"`
	PrecipitacionMm    float64   `gorm:"column:precipitacion_mm"`
	VientoVelocidadKmh float64   `gorm:"column:viento_velocidad_kmh"`
	VientoRafagaKmh    float64   `gorm:"column:viento_rafaga_kmh"`
	VientoDireccionDeg float64   `gorm:"column:viento_direccion_deg"`
	CodigoClimaWMO     int       `gorm:"column:codigo_clima_wmo"`
	RunID              string    `gorm:"column:run_id"`
	CollectedAt        time.Time `gorm:"column:collected_at"`
}

// TableName specifies the table name for ObservacionRecord.
func (ObservacionRecord) TableName() string {
	return "observaciones_horarias"
}

// ToRecord converts the observation into its database representation.
func (o *Observation) ToRecord(runID string, collectedAt time.Time) ObservacionRecord {
	return ObservacionRecord{
		Time:               o.Timestamp,
		Latitude:           o.Latitude,
		Longitude:          o.Longitude,
		TemperaturaC:       o.TemperaturaC,
		HumedadPct:         o.HumedadPct,
		PuntoRocioC:        o.PuntoRocioC,
		PresionHPa:         o.PresionHPa,
		PrecipitacionMm:    o.PrecipitacionMm,
		VientoVelocidadKmh: o.VientoVelocidadKmh,
		VientoRafagaKmh:    o.VientoRafagaKmh,
		VientoDireccionDeg: o.VientoDireccionDeg,
		CodigoClimaWMO:     o.CodigoClimaWMO,
		RunID:              runID,
		CollectedAt:        collectedAt,
	}
}
