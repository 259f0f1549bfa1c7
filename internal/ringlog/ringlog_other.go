//go:build !unix

package ringlog

import (
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// Open returns Unsupported on platforms without POSIX file mappings,
// per spec.md's Non-goals and §9's cross-platform degradation note.
func Open(cfg config.RingLogConfig, logger *zap.Logger) (*Log, error) {
	return nil, cerrors.New(cerrors.Unsupported, "memory-mapped ring log requires a POSIX platform")
}

// Sync is unreachable: Open never returns a usable Log on this platform.
func (l *Log) Sync() error {
	return cerrors.New(cerrors.Unsupported, "ring log sync requires a POSIX platform")
}

// SyncAsync is unreachable: Open never returns a usable Log on this platform.
func (l *Log) SyncAsync() {}
