package store

import "go.uber.org/fx"

// Module provides the database connection provider to the Fx container.
var Module = fx.Options(
	fx.Provide(NewProvider),
)
