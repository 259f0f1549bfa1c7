package store

import (
	"math"

	"gonum.org/v1/gonum/floats"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// PriceArray is the structure-of-arrays price history from §3/§4.2:
// four parallel, fixed-capacity slices optimized for vectorized
// reduction. Capacity is fixed at construction; the array is
// append-only with no eviction (§9 Price-array capacity note) — callers
// running long-lived producers must externally rotate instances.
//
// Not internally synchronized (§5): callers serialize access.
type PriceArray struct {
	price     []float64
	volume    []uint64
	timestamp []uint64
	symbol    [][8]byte

	length   int
	capacity int
}

// NewPriceArray allocates a PriceArray with the given fixed capacity.
func NewPriceArray(cfg config.PriceArrayConfig) (*PriceArray, error) {
	if cfg.Capacity <= 0 {
		return nil, cerrors.New(cerrors.InvalidArgument, "price array capacity must be positive")
	}
	return &PriceArray{
		price:     make([]float64, cfg.Capacity),
		volume:    make([]uint64, cfg.Capacity),
		timestamp: make([]uint64, cfg.Capacity),
		symbol:    make([][8]byte, cfg.Capacity),
		capacity:  cfg.Capacity,
	}, nil
}

// Push appends md, failing with CapacityExceeded once length == capacity.
func (p *PriceArray) Push(md MarketData) error {
	if p.length >= p.capacity {
		return cerrors.New(cerrors.CapacityExceeded, "price array is at capacity")
	}
	i := p.length
	p.price[i] = md.Price
	p.volume[i] = md.Volume
	p.timestamp[i] = md.Timestamp
	p.symbol[i] = md.Symbol
	p.length++
	return nil
}

// UpdatePrices overwrites the contiguous range [start, start+len(newPrices))
// of the price array. Bounds-checked against the current length.
func (p *PriceArray) UpdatePrices(start int, newPrices []float64) error {
	if start < 0 || start+len(newPrices) > p.length {
		return cerrors.New(cerrors.OutOfBounds, "update_prices range exceeds current length")
	}
	copy(p.price[start:start+len(newPrices)], newPrices)
	return nil
}

// Slice returns a borrowed view of the price array over [start, start+length).
func (p *PriceArray) Slice(start, length int) ([]float64, error) {
	if start < 0 || length < 0 || start+length > p.length {
		return nil, cerrors.New(cerrors.OutOfBounds, "slice range exceeds current length")
	}
	return p.price[start : start+length], nil
}

// Avg computes the mean of prices over [start, start+length) via
// gonum's floats.Sum, matching a naive scan within one ULP.
func (p *PriceArray) Avg(start, length int) (float64, error) {
	s, err := p.Slice(start, length)
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	return floats.Sum(s) / float64(length), nil
}

// Max computes the maximum price over [start, start+length), bit-exact
// with a naive scan.
func (p *PriceArray) Max(start, length int) (float64, error) {
	s, err := p.Slice(start, length)
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return math.Inf(-1), nil
	}
	return floats.Max(s), nil
}

// Len returns the current number of pushed elements.
func (p *PriceArray) Len() int { return p.length }

// Capacity returns the fixed capacity set at construction.
func (p *PriceArray) Capacity() int { return p.capacity }
