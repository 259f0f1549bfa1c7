// Package orderbook implements the price-level order book from §4.3:
// two ordered price ladders per instrument with O(log n) mutation and
// O(1) best-quote access, Level-1/Level-2 snapshots, and depth-weighted
// VWAP. Grounded on the teacher's container/heap-based OrderHeap in
// internal/core/matching/order_book.go for the heap shape, and on the
// original Rust orderbook.rs for the exact bbo/vwap/spread_bps
// algorithms (including the confirmed OrderBookManager.add_order bug
// that motivates AddOrder's explicit symbol parameter here).
package orderbook

import "time"

// Side is the side of a resting order or price ladder.
type Side int

const (
	// Buy orders sit in the bids ladder, best = highest price.
	Buy Side = iota
	// Sell orders sit in the asks ladder, best = lowest price.
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is a single book input (§3).
type Order struct {
	ID        string
	Side      Side
	Price     float64
	Quantity  float64
	Timestamp time.Time
}

// PriceLevel is the aggregate resting interest at one price (§3). A
// level with Size == 0 is never present in the book.
type PriceLevel struct {
	Price      float64
	Size       float64
	OrderCount int
	LastUpdate time.Time
}

// BBO is the Level-1 best-bid-offer snapshot (§4.3 bbo).
type BBO struct {
	Symbol    string
	BidPrice  *float64
	BidSize   *float64
	AskPrice  *float64
	AskSize   *float64
	Spread    *float64
	Mid       *float64
	Sequence  uint64
	Timestamp time.Time
}

// Level2 is a depth snapshot of both ladders (§4.3 snapshot).
type Level2 struct {
	Symbol    string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Sequence  uint64
	Timestamp time.Time
}

// Stats is the per-book aggregate view (§4.3 stats).
type Stats struct {
	Symbol         string
	TotalBidVolume float64
	TotalAskVolume float64
	SpreadBps      *float64
	Sequence       uint64
}
