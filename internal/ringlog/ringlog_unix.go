//go:build unix

package ringlog

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// Open truncates cfg.FilePath to cfg.SizeMB MiB (a power of two),
// memory-maps it read/write, and advises the kernel for sequential
// access. The mapping, not the file, is released on Close; the file
// persists for process lifetime per §3.
func Open(cfg config.RingLogConfig, logger *zap.Logger) (*Log, error) {
	size, err := sizeFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.IoError, "opening ring log backing file")
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, cerrors.Wrap(err, cerrors.IoError, "truncating ring log backing file")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, cerrors.Wrap(err, cerrors.IoError, "mapping ring log backing file")
	}

	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		logger.Warn("madvise sequential failed, continuing without hint", zap.Error(err))
	}

	l := &Log{
		data:   data,
		size:   size,
		mask:   size - 1,
		logger: logger,
	}
	l.closer = func() error {
		if err := unix.Munmap(data); err != nil {
			return cerrors.Wrap(err, cerrors.IoError, "unmapping ring log")
		}
		return f.Close()
	}

	logger.Info("ring log opened", zap.String("path", cfg.FilePath), zap.Uint64("size_bytes", size))
	return l, nil
}

// Sync flushes the mapping synchronously. This is the only blocking
// operation in the core (§5); it is advisory for crash recovery and is
// not required for in-memory consumer correctness (§4.1 Durability).
func (l *Log) Sync() error {
	if err := unix.Msync(l.data, unix.MS_SYNC); err != nil {
		return cerrors.Wrap(err, cerrors.IoError, "msync failed")
	}
	return nil
}

// SyncAsync schedules an asynchronous flush and returns immediately.
func (l *Log) SyncAsync() {
	go func() {
		if err := unix.Msync(l.data, unix.MS_ASYNC); err != nil && l.logger != nil {
			l.logger.Warn("async msync failed", zap.Error(err))
		}
	}()
}
