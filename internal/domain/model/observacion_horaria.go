package model

import (
	"time"

	"github.com/clima-cdmx/archivador/internal/domain/entity"
)

// ObservacionHoraria represents one transformed hourly observation for export.
// It includes parquet tags for serialization to Parquet format.
type ObservacionHoraria struct {
	Time               int64   `parquet:"name=time,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	TemperaturaC       float64 `parquet:"name=temperatura_c,type=DOUBLE"`
	HumedadPct         float64 `parquet:"name=humedad_pct,type=DOUBLE"`
	PuntoRocioC        float64 `parquet:"name=punto_rocio_c,type=DOUBLE"`
	PresionHPa         float64 `parquet:"name=presion_hpa,type=DOUBLE"`
	PrecipitacionMm    float64 `parquet:"name=precipitacion_mm,type=DOUBLE"`
	VientoVelocidadKmh float64 `parquet:"name=viento_velocidad_kmh,type=DOUBLE"`
	VientoRafagaKmh    float64 `parquet:"name=viento_rafaga_kmh,type=DOUBLE"`
	VientoDireccionDeg float64 `parquet:"name=viento_direccion_deg,type=DOUBLE"`
	CodigoClimaWMO     int32   `parquet:"name=codigo_clima_wmo,type=INT32"`
	Latitude           float64 `parquet:"name=latitude,type=DOUBLE"`
	Longitude          float64 `parquet:"name=longitude,type=DOUBLE"`
	CollectedAt        int64   `parquet:"name=collected_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
}

// FromObservation converts a pipeline observation into its export shape.
// Timestamps become epoch milliseconds as required by the parquet schema.
func FromObservation(o *entity.Observation, collectedAt time.Time) ObservacionHoraria {
	return ObservacionHoraria{
		Time:               o.Timestamp.UnixMilli(),
		TemperaturaC:       o.TemperaturaC,
		HumedadPct:         o.HumedadPct,
		PuntoRocioC:        o.PuntoRocioC,
		PresionHPa:         o.PresionHPa,
		PrecipitacionMm:    o.PrecipitacionMm,
		VientoVelocidadKmh: o.VientoVelocidadKmh,
		VientoRafagaKmh:    o.VientoRafagaKmh,
		VientoDireccionDeg: o.VientoDireccionDeg,
		CodigoClimaWMO:     int32(o.CodigoClimaWMO),
		Latitude:           o.Latitude,
		Longitude:          o.Longitude,
		CollectedAt:        collectedAt.UnixMilli(),
	}
}
