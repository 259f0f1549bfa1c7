package ringlog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// Module provides the ring log for fx wiring, following the teacher's
// per-package fx.Options convention (internal/gateway/module.go,
// internal/orders/module.go in the original tree).
var Module = fx.Options(
	fx.Provide(NewFxLog),
)

// NewFxLog opens the ring log from the root config and registers an
// OnStop hook to unmap it cleanly on shutdown.
func NewFxLog(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Log, error) {
	l, err := Open(cfg.RingLog, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return l.Close()
		},
	})

	return l, nil
}
