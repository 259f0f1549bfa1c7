package store

import (
	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// MovingAverage is the fixed-period sliding window from §4.2: a
// circular buffer with a running sum, matching
// CacheOptimizedMovingAverage::add in the original verbatim (read-old,
// write-new, conditional running-sum update).
type MovingAverage struct {
	buffer []float64
	period int
	index  int
	sum    float64
	count  int
	filled bool
}

// NewMovingAverage creates a MovingAverage over cfg.Period samples.
// Period must be at least 1.
func NewMovingAverage(cfg config.MovingAverageConfig) (*MovingAverage, error) {
	if cfg.Period < 1 {
		return nil, cerrors.New(cerrors.InvalidArgument, "moving average period must be >= 1")
	}
	return &MovingAverage{
		buffer: make([]float64, cfg.Period),
		period: cfg.Period,
	}, nil
}

// Add feeds x into the window and returns the updated average: the mean
// of every sample so far until the window fills, then the mean of the
// last period samples. Add never returns the empty-window result; the
// 0.0 for an empty window is what Current reports before the first Add.
func (m *MovingAverage) Add(x float64) float64 {
	out := m.buffer[m.index]
	m.buffer[m.index] = x
	m.index = (m.index + 1) % m.period

	if m.filled {
		m.sum = m.sum - out + x
		return m.sum / float64(m.period)
	}

	m.sum += x
	m.count++
	if m.count == m.period {
		m.filled = true
	}
	return m.sum / float64(m.count)
}

// Current returns the average as of the last Add without mutating
// state, or 0.0 if Add has never been called.
func (m *MovingAverage) Current() float64 {
	if m.count == 0 {
		return 0.0
	}
	if m.filled {
		return m.sum / float64(m.period)
	}
	return m.sum / float64(m.count)
}

// Recompute recalculates the running sum from the buffer contents,
// correcting accumulated floating-point drift over long runs. It must
// not change the next observable Add output beyond that correction
// (§4.2).
func (m *MovingAverage) Recompute() {
	var sum float64
	n := m.count
	if m.filled {
		n = m.period
	}
	for i := 0; i < n; i++ {
		sum += m.buffer[i]
	}
	m.sum = sum
}
