// Package processor contains the transformation stage of the archive
// pipeline.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const moduleName = "observation_transform_processor"

// msToKmh converts a wind speed from m/s (API unit) to km/h (output unit).
const msToKmh = 3.6

// ObservationTransformProcessor converts a raw zipped API row into the output
// observation: wind speeds go from m/s to km/h and the timestamp string is
// parsed in the request timezone for the structured sinks.
type ObservationTransformProcessor struct {
	loc *time.Location
}

// NewObservationTransformProcessor creates the processor. The request
// timezone governs timestamp interpretation; an unknown timezone falls back
// to UTC.
func NewObservationTransformProcessor(cfg *config.Config) *ObservationTransformProcessor {
	loc, err := time.LoadLocation(cfg.Archivador.Request.Timezone)
	if err != nil {
		logger.Warnf("Failed to load timezone '%s'. Falling back to UTC: %v", cfg.Archivador.Request.Timezone, err)
		loc = time.UTC
	}
	return &ObservationTransformProcessor{loc: loc}
}

// Process transforms one raw observation.
func (p *ObservationTransformProcessor) Process(ctx context.Context, item entity.RawObservation) (entity.Observation, error) {
	select {
	case <-ctx.Done():
		return entity.Observation{}, ctx.Err()
	default:
	}

	parsedTime, err := time.ParseInLocation(entity.TimeLayout, item.Time, p.loc)
	if err != nil {
		return entity.Observation{}, exception.NewUnexpectedError(moduleName, fmt.Sprintf("failed to parse time: %s", item.Time), err)
	}

	return entity.Observation{
		FechaHora:          item.Time,
		Timestamp:          parsedTime,
		TemperaturaC:       item.Temperature2M,
		HumedadPct:         item.RelativeHumidity2M,
		PuntoRocioC:        item.DewPoint2M,
		PresionHPa:         item.PressureMsl,
		PrecipitacionMm:    item.Precipitation,
		VientoVelocidadKmh: item.WindSpeed10M * msToKmh,
		VientoRafagaKmh:    item.WindGusts10M * msToKmh,
		VientoDireccionDeg: item.WindDirection10M,
		CodigoClimaWMO:     item.WeatherCode,
		Latitude:           item.Latitude,
		Longitude:          item.Longitude,
	}, nil
}

var _ pipeline.ItemProcessor[entity.RawObservation, entity.Observation] = (*ObservationTransformProcessor)(nil)
