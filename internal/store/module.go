package store

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// Module provides the hot cache, price array, and moving average for fx
// wiring.
var Module = fx.Options(
	fx.Provide(NewFxHotCache),
	fx.Provide(NewFxPriceArray),
	fx.Provide(NewFxMovingAverage),
)

// NewFxHotCache builds the hot cache from the root config and registers
// an OnStop hook to stop its idle sweeper.
func NewFxHotCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*HotCache, error) {
	h, err := NewHotCache(cfg.HotCache, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			h.Close()
			return nil
		},
	})

	return h, nil
}

// NewFxPriceArray builds the price history array from the root config.
func NewFxPriceArray(cfg *config.Config) (*PriceArray, error) {
	return NewPriceArray(cfg.PriceArray)
}

// NewFxMovingAverage builds the moving average from the root config.
func NewFxMovingAverage(cfg *config.Config) (*MovingAverage, error) {
	return NewMovingAverage(cfg.MovingAverage)
}
