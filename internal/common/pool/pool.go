// Package pool provides sync.Pool-backed buffer reuse for the core's hot
// allocation paths, adapted from the teacher's generic ObjectPool and
// domain-specific FastOrderPool/TradePool
// (internal/common/pool/pool.go in the original tree): same
// Get/Put-with-truncate shape, retargeted at ring-log record framing
// instead of order/trade/websocket messages, which belong to the
// HTTP/matching layers this module does not implement.
package pool

import "sync"

// ByteBufferPool reuses []byte scratch buffers for ring-log record
// framing, so encoding a tick for Log.Append doesn't allocate on every
// call. See internal/ingest.Service.Publish, the pool's one caller.
type ByteBufferPool struct {
	pool sync.Pool
}

// NewByteBufferPool creates a pool whose buffers start at the given size.
func NewByteBufferPool(size int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, 0, size)
			},
		},
	}
}

// Get retrieves a zero-length buffer ready for append.
func (p *ByteBufferPool) Get() []byte {
	return p.pool.Get().([]byte)
}

// Put returns a buffer to the pool after truncating it to zero length.
func (p *ByteBufferPool) Put(buf []byte) {
	p.pool.Put(buf[:0])
}
