package orderbook

import (
	"go.uber.org/fx"
)

// Module provides the order book manager for fx wiring.
var Module = fx.Options(
	fx.Provide(NewManager),
)
