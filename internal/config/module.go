package config

import "go.uber.org/fx"

// Module provides the application configuration to the Fx container.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
