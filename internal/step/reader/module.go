package reader

import "go.uber.org/fx"

// Module provides the archive API reader to the Fx container.
var Module = fx.Options(
	fx.Provide(NewArchiveAPIReader),
)
