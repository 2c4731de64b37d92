package metrics

import (
	"go.uber.org/fx"

	"github.com/clima-cdmx/archivador/internal/config"
)

// NewRecorderFromConfig selects the Recorder implementation based on the
// metrics configuration.
func NewRecorderFromConfig(cfg *config.Config) Recorder {
	if cfg.Archivador.Metrics.Enabled {
		return NewPrometheusRecorder(cfg.Archivador.Metrics.PushGatewayURL)
	}
	return NewNoOpRecorder()
}

// Module is an Fx module that provides metrics-related components.
var Module = fx.Options(
	fx.Provide(NewRecorderFromConfig),
	fx.Provide(NewLoggingTracer),
)
