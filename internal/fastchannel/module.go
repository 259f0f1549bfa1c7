package fastchannel

import (
	"context"

	"go.uber.org/fx"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
	"github.com/abdoElHodaky/tradsys-core/internal/store"
)

// MarketDataChannel is the concrete instantiation of Channel used to hand
// off ticks from internal/ingest.Service.Publish to the ingest consumer
// goroutine that feeds the hot cache, price array, moving average and
// order books. It exists as a named type since fx's reflection-based DI
// cannot provide a bare generic constructor.
type MarketDataChannel = Channel[store.MarketData]

// Module provides the market data fast channel for fx wiring.
var Module = fx.Options(
	fx.Provide(NewFxMarketDataChannel),
)

// NewFxMarketDataChannel builds the market data channel from the root
// config and registers an OnStop hook to close it.
func NewFxMarketDataChannel(lc fx.Lifecycle, cfg *config.Config) (*MarketDataChannel, error) {
	c, err := New[store.MarketData](cfg.FastChannel.Capacity)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})

	return c, nil
}
