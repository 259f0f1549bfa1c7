// Package fastchannel implements the bounded MPSC primitive named
// throughout spec §5/§6/§7 as the "Fast Channel": a capacity-bounded
// queue whose non-blocking receive distinguishes an empty queue from a
// permanently disconnected one. Grounded on the original Rust
// UltraFastChannel (a thin wrapper over crossbeam's bounded channel);
// here it wraps a native Go channel plus a closed flag, since Go
// channels alone conflate "closed and drained" with "empty".
package fastchannel

import (
	"sync/atomic"
	"time"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// Channel is a bounded, generic, multi-producer single-or-multi-consumer
// queue with non-blocking and timed receive.
type Channel[T any] struct {
	ch     chan T
	closed atomic.Bool
}

// New creates a Channel with the given capacity. Capacity must be
// positive.
func New[T any](capacity int) (*Channel[T], error) {
	if capacity <= 0 {
		return nil, cerrors.New(cerrors.InvalidArgument, "fast channel capacity must be positive")
	}
	return &Channel[T]{ch: make(chan T, capacity)}, nil
}

// Send enqueues v, blocking only if the channel is at capacity. Returns
// Disconnected if Close has already been called.
func (c *Channel[T]) Send(v T) (err error) {
	if c.closed.Load() {
		return cerrors.New(cerrors.Disconnected, "fast channel is closed")
	}
	defer func() {
		// A Close racing with this Send turns a send-on-closed-channel
		// panic into a reported Disconnected error.
		if r := recover(); r != nil {
			err = cerrors.New(cerrors.Disconnected, "fast channel is closed")
		}
	}()
	c.ch <- v
	return nil
}

// TryRecv returns immediately. ok is false when the channel is
// currently empty but still open; err is Disconnected once the channel
// has been closed and drained.
func (c *Channel[T]) TryRecv() (value T, ok bool, err error) {
	select {
	case v, open := <-c.ch:
		if !open {
			return value, false, cerrors.New(cerrors.Disconnected, "fast channel is closed")
		}
		return v, true, nil
	default:
		if c.closed.Load() {
			return value, false, cerrors.New(cerrors.Disconnected, "fast channel is closed")
		}
		return value, false, nil
	}
}

// RecvTimeout blocks for up to d waiting for a value. ok is false on
// timeout; err is Disconnected if the channel closes while waiting.
func (c *Channel[T]) RecvTimeout(d time.Duration) (value T, ok bool, err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case v, open := <-c.ch:
		if !open {
			return value, false, cerrors.New(cerrors.Disconnected, "fast channel is closed")
		}
		return v, true, nil
	case <-timer.C:
		return value, false, nil
	}
}

// Close marks the channel disconnected. Buffered values already sent
// remain receivable until drained; after draining, TryRecv and
// RecvTimeout report Disconnected.
func (c *Channel[T]) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.ch)
	}
}
