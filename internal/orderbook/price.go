package orderbook

import (
	"math"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// Price is a validated, non-NaN float64 newtype giving the book's
// price ladders a total order to key on — the pattern §9's design notes
// call for ("a newtype wrapping f64 with a validated non-NaN total
// order is the natural pattern").
type Price float64

// NewPrice validates f and returns it as a Price. NaN is rejected at
// the boundary; everything else (including negative and zero, which
// callers reject separately per their own validation) has a total
// order under plain float64 comparison.
func NewPrice(f float64) (Price, error) {
	if math.IsNaN(f) {
		return 0, cerrors.New(cerrors.InvalidArgument, "price must not be NaN")
	}
	return Price(f), nil
}
