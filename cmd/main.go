package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
	"github.com/abdoElHodaky/tradsys-core/internal/fastchannel"
	"github.com/abdoElHodaky/tradsys-core/internal/hft/memory"
	"github.com/abdoElHodaky/tradsys-core/internal/ingest"
	"github.com/abdoElHodaky/tradsys-core/internal/numa"
	"github.com/abdoElHodaky/tradsys-core/internal/orderbook"
	"github.com/abdoElHodaky/tradsys-core/internal/ringlog"
	"github.com/abdoElHodaky/tradsys-core/internal/store"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
		),

		ringlog.Module,
		store.Module,
		orderbook.Module,
		numa.Module,
		fastchannel.Module,
		memory.Module,
		ingest.Module,

		fx.Invoke(func(
			logger *zap.Logger,
			numaScheduler *numa.Scheduler,
			memManager *memory.HFTMemoryManager,
			_ *ingest.Service,
		) {
			topo := numaScheduler.Topology()
			logger.Info("core started",
				zap.Int("numa_nodes", topo.TotalNodes),
				zap.Int("numa_current_node", topo.CurrentNode))
			_ = memManager
		}),
	)

	app.Run()
}

// newConfig loads configuration from config.yaml in the working directory
// or its ./config subdirectory, plus TRADSYS_-prefixed environment
// variables.
func newConfig() (*config.Config, error) {
	return config.Load("")
}

// newLogger creates a new logger, selecting the production preset when
// cfg.Environment is "production".
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
