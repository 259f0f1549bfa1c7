// Package store implements the cache-line-aware in-memory components
// from spec §4.2: the Hot Cache, the Price Array, and the Moving
// Average. Grounded on the original Rust cache_optimized.rs for the
// MarketData layout and the array/average algorithms, and on cache.rs
// for the Hot Cache's TTL/time-to-idle semantics.
package store

import (
	"encoding/binary"
	"math"
	"unsafe"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// MarketData is the fixed 64-byte quote/trade tick record from §3.
// Field order and sizes are chosen so the struct is exactly 64 bytes on
// every platform this module targets; init validates the invariant the
// same way the original cache_optimized.rs asserts
// size_of::<CacheOptimizedMarketData>() == 64.
//
// Go has no equivalent of Rust's #[repr(align(64))]: PriceArray, the one
// caller that would benefit from cache-line alignment, falls back to a
// plain slice (internal/store/pricearray.go) and accepts the occasional
// cross-line record. 64-byte struct size is still enforced below so the
// wire encoding stays fixed-width even without alignment.
type MarketData struct {
	Symbol      [8]byte
	Price       float64
	Volume      uint64
	Timestamp   uint64
	Bid         float64
	Ask         float64
	SessionHigh float64
	SessionLow  float32
	Sequence    uint32
}

const marketDataSize = 64

func init() {
	if unsafe.Sizeof(MarketData{}) != marketDataSize {
		panic("store: MarketData layout is not 64 bytes on this platform")
	}
}

// Encode writes md to a freshly allocated wire-stable 64-byte
// little-endian buffer. Callers on a hot path that can supply their own
// scratch buffer (e.g. from a pool) should use EncodeInto instead.
func (md MarketData) Encode() []byte {
	return md.EncodeInto(make([]byte, 0, marketDataSize))
}

// EncodeInto appends md's wire-stable 64-byte little-endian encoding to
// buf and returns the result, growing buf if its capacity is too small.
// Unlike a direct unsafe cast of the struct, this stays stable across
// the padding differences a future field reorder could introduce, and
// lets a caller reuse a pooled buffer instead of allocating on every
// call (see internal/ingest.Service.Publish).
func (md MarketData) EncodeInto(buf []byte) []byte {
	var tmp [marketDataSize]byte
	copy(tmp[0:8], md.Symbol[:])
	binary.LittleEndian.PutUint64(tmp[8:16], math.Float64bits(md.Price))
	binary.LittleEndian.PutUint64(tmp[16:24], md.Volume)
	binary.LittleEndian.PutUint64(tmp[24:32], md.Timestamp)
	binary.LittleEndian.PutUint64(tmp[32:40], math.Float64bits(md.Bid))
	binary.LittleEndian.PutUint64(tmp[40:48], math.Float64bits(md.Ask))
	binary.LittleEndian.PutUint64(tmp[48:56], math.Float64bits(md.SessionHigh))
	binary.LittleEndian.PutUint32(tmp[56:60], math.Float32bits(md.SessionLow))
	binary.LittleEndian.PutUint32(tmp[60:64], md.Sequence)
	return append(buf, tmp[:]...)
}

// DecodeMarketData parses a buffer produced by Encode. Returns
// InsufficientSize if buf is shorter than the fixed record size.
func DecodeMarketData(buf []byte) (MarketData, error) {
	if len(buf) < marketDataSize {
		return MarketData{}, cerrors.Newf(cerrors.InsufficientSize, "market data record needs %d bytes, got %d", marketDataSize, len(buf))
	}
	var md MarketData
	copy(md.Symbol[:], buf[0:8])
	md.Price = math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	md.Volume = binary.LittleEndian.Uint64(buf[16:24])
	md.Timestamp = binary.LittleEndian.Uint64(buf[24:32])
	md.Bid = math.Float64frombits(binary.LittleEndian.Uint64(buf[32:40]))
	md.Ask = math.Float64frombits(binary.LittleEndian.Uint64(buf[40:48]))
	md.SessionHigh = math.Float64frombits(binary.LittleEndian.Uint64(buf[48:56]))
	md.SessionLow = math.Float32frombits(binary.LittleEndian.Uint32(buf[56:60]))
	md.Sequence = binary.LittleEndian.Uint32(buf[60:64])
	return md, nil
}
