package ingest

import (
	"go.uber.org/fx"
)

// Module provides the ingest service for fx wiring.
var Module = fx.Options(
	fx.Provide(New),
)
