package processor

import "go.uber.org/fx"

// Module provides the observation transform processor to the Fx container.
var Module = fx.Options(
	fx.Provide(NewObservationTransformProcessor),
)
