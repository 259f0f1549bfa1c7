// Package ringlog implements the memory-mapped, append-only ring
// buffer described in spec §4.1: a lock-free, zero-copy transport for
// many producers writing into a single shared mapping, addressed by
// monotonic cursors modulo the ring size.
//
// Grounded on the original Rust UltraFastLog
// (services/calculation-engine/src/ultrafast_log.rs) for the
// reserve/copy/fence algorithm, and on the pack's shm-seqlock ring
// buffer (AlephTX/aleph-tx) for the Go mmap mechanics this package
// adapts (syscall.Mmap sizing, explicit size validation at
// construction).
package ringlog

import (
	"sync/atomic"

	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// Stats reports cumulative counters and derived utilization metrics.
type Stats struct {
	Writes             uint64
	BytesWritten       uint64
	UtilizationPercent float64
	AvgWriteSize       float64
}

// Log is a fixed-size, file-backed append-only ring. The zero value is
// not usable; construct with Open.
type Log struct {
	data []byte
	size uint64
	mask uint64

	writeCursor atomic.Uint64
	readCursor  atomic.Uint64
	writes      atomic.Uint64
	bytes       atomic.Uint64

	logger *zap.Logger

	closer func() error
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// reserve performs the fetch-and-add reservation and overlap check
// shared by Append and BatchAppend. It returns the logical (unmasked)
// start position of the reservation.
func (l *Log) reserve(length uint64) (uint64, error) {
	if length == 0 || length > l.size/4 {
		return 0, cerrors.Newf(cerrors.CapacityExceeded, "record length %d exceeds S/4 (%d)", length, l.size/4)
	}

	reserved := l.writeCursor.Add(length) - length
	r := l.readCursor.Load()

	// Occupancy after this reservation, measured from the last known
	// reader position. If it would exceed the ring size the reservation
	// has collided with data the reader has not yet consumed.
	occupancy := reserved + length - r
	if occupancy > l.size {
		return reserved, cerrors.New(cerrors.BufferFull, "reservation would overlap unread data")
	}
	return reserved, nil
}

func (l *Log) writeAt(pos uint64, data []byte) {
	start := pos & l.mask
	n := uint64(len(data))
	if start+n <= l.size {
		copy(l.data[start:start+n], data)
	} else {
		first := l.size - start
		copy(l.data[start:], data[:first])
		copy(l.data[:n-first], data[first:])
	}
}

// Append reserves len(data) bytes and copies them in, returning the
// logical position of the reservation's start. Fails with
// CapacityExceeded if len(data) > S/4, or BufferFull if the reservation
// would collide with the reader cursor.
func (l *Log) Append(data []byte) (uint64, error) {
	pos, err := l.reserve(uint64(len(data)))
	if err != nil {
		return 0, err
	}
	l.writeAt(pos, data)
	l.writes.Add(1)
	l.bytes.Add(uint64(len(data)))
	return pos, nil
}

// BatchAppend reserves space for all items in a single reservation,
// performs a single overlap check, then copies each item's bytes at its
// offset within the reservation. Returns each item's logical position.
func (l *Log) BatchAppend(items [][]byte) ([]uint64, error) {
	var total uint64
	for _, item := range items {
		total += uint64(len(item))
	}
	if total == 0 {
		return nil, nil
	}

	start, err := l.reserve(total)
	if err != nil {
		return nil, err
	}

	positions := make([]uint64, len(items))
	offset := uint64(0)
	for i, item := range items {
		pos := start + offset
		positions[i] = pos
		l.writeAt(pos, item)
		offset += uint64(len(item))
	}
	l.writes.Add(uint64(len(items)))
	l.bytes.Add(total)
	return positions, nil
}

// ReadAt returns a copy of length bytes starting at logical position
// pos. Fails with OutOfBounds only if length exceeds the ring size; pos
// is masked into the ring, so a read that runs past the end of the
// region continues at its start rather than failing.
func (l *Log) ReadAt(pos uint64, length int) ([]byte, error) {
	if length < 0 || uint64(length) > l.size {
		return nil, cerrors.New(cerrors.OutOfBounds, "read length exceeds ring size")
	}
	n := uint64(length)
	start := pos & l.mask
	out := make([]byte, n)
	if start+n <= l.size {
		copy(out, l.data[start:start+n])
	} else {
		first := l.size - start
		copy(out, l.data[start:])
		copy(out[first:], l.data[:n-first])
	}
	return out, nil
}

// AdvanceRead moves the reader cursor forward by n, signalling to
// producers that the corresponding bytes may be overwritten.
func (l *Log) AdvanceRead(n uint64) {
	l.readCursor.Add(n)
}

// Available returns the number of bytes the reader has released but
// producers have not yet consumed.
func (l *Log) Available() uint64 {
	occupied := l.writeCursor.Load() - l.readCursor.Load()
	if occupied > l.size {
		return 0
	}
	return l.size - occupied
}

// Stats returns a snapshot of cumulative counters.
func (l *Log) Stats() Stats {
	writes := l.writes.Load()
	bytes := l.bytes.Load()
	occupied := l.writeCursor.Load() - l.readCursor.Load()
	util := 0.0
	if l.size > 0 {
		util = float64(occupied) / float64(l.size) * 100.0
	}
	avg := 0.0
	if writes > 0 {
		avg = float64(bytes) / float64(writes)
	}
	return Stats{
		Writes:             writes,
		BytesWritten:       bytes,
		UtilizationPercent: util,
		AvgWriteSize:       avg,
	}
}

// Close unmaps the backing region and closes the file descriptor. The
// file itself persists after Close per §3's ownership rules.
func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

func sizeFromConfig(cfg config.RingLogConfig) (uint64, error) {
	if cfg.SizeMB <= 0 || !isPowerOfTwo(uint64(cfg.SizeMB)) {
		return 0, cerrors.Newf(cerrors.InvalidArgument, "size_mb (%d) must be a power of two", cfg.SizeMB)
	}
	return uint64(cfg.SizeMB) * 1024 * 1024, nil
}
