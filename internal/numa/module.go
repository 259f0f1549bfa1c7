package numa

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// Module provides the NUMA scheduler for fx wiring.
var Module = fx.Options(
	fx.Provide(NewFxScheduler),
)

// NewFxScheduler wraps NewScheduler so that an Unsupported topology (a
// non-Linux host, or a host without a sysfs NUMA hierarchy) degrades to
// a single-node Scheduler rather than failing application startup,
// matching §9's cross-platform degradation note.
func NewFxScheduler(logger *zap.Logger) (*Scheduler, error) {
	s, err := NewScheduler(logger)
	if err == nil {
		return s, nil
	}
	if cerrors.Is(err, cerrors.Unsupported) || cerrors.Is(err, cerrors.IoError) {
		logger.Warn("NUMA topology unavailable, running without NUMA placement", zap.Error(err))
		return &Scheduler{
			topology:    Topology{TotalNodes: 1, CurrentNode: 0},
			assignments: buildAssignments(1),
			logger:      logger,
		}, nil
	}
	return nil, err
}
