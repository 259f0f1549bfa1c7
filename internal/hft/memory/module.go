package memory

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the memory manager for fx wiring.
var Module = fx.Options(
	fx.Provide(NewFxMemoryManager),
)

// NewFxMemoryManager builds the memory manager with default tuning and
// registers an OnStop hook to stop its monitoring loop.
func NewFxMemoryManager(lc fx.Lifecycle, logger *zap.Logger) *HFTMemoryManager {
	m := NewHFTMemoryManager(nil, logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			m.Close()
			return nil
		},
	})

	return m
}
