package orderbook

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
)

// OrderBook is the per-symbol state described in §3/§4.3: two ordered
// price ladders, cached best-bid/best-ask, cumulative volume counters,
// and a monotonic update sequence. Single-writer per book is the
// intended concurrency model (§5); the RWMutex here lets readers take
// consistent snapshots without an external lock.
type OrderBook struct {
	symbol string
	logger *zap.Logger

	mu sync.RWMutex

	bids    *ladder
	asks    *ladder
	bidIdx  map[Price]*ladderItem
	askIdx  map[Price]*ladderItem
	bestBid *float64
	bestAsk *float64

	totalBidVolume float64
	totalAskVolume float64

	sequence   uint64
	lastUpdate time.Time
}

// NewOrderBook constructs an empty book for symbol.
func NewOrderBook(symbol string, logger *zap.Logger) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		logger: logger,
		bids:   newLadder(func(a, b float64) bool { return a > b }),
		asks:   newLadder(func(a, b float64) bool { return a < b }),
		bidIdx: make(map[Price]*ladderItem),
		askIdx: make(map[Price]*ladderItem),
	}
}

func validateOrder(o Order) error {
	if o.Price <= 0 {
		return cerrors.New(cerrors.InvalidArgument, "order price must be positive")
	}
	if o.Quantity <= 0 {
		return cerrors.New(cerrors.InvalidArgument, "order quantity must be positive")
	}
	if o.Side != Buy && o.Side != Sell {
		return cerrors.New(cerrors.InvalidArgument, "order side must be buy or sell")
	}
	return nil
}

// AddOrder aggregates o into its price level, creating the level if
// absent, and returns the resulting level. Rejects a price that would
// cross the opposite side, preserving the best_bid < best_ask invariant
// (§3).
func (b *OrderBook) AddOrder(o Order) (*PriceLevel, error) {
	if err := validateOrder(o); err != nil {
		return nil, err
	}
	price, err := NewPrice(o.Price)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if o.Side == Buy && b.bestAsk != nil && o.Price >= *b.bestAsk {
		return nil, cerrors.Newf(cerrors.InvalidArgument, "buy at %.8f would cross best ask %.8f", o.Price, *b.bestAsk)
	}
	if o.Side == Sell && b.bestBid != nil && o.Price <= *b.bestBid {
		return nil, cerrors.Newf(cerrors.InvalidArgument, "sell at %.8f would cross best bid %.8f", o.Price, *b.bestBid)
	}

	lad, idx := b.sideLocked(o.Side)

	item, exists := idx[price]
	if !exists {
		item = &ladderItem{level: &PriceLevel{Price: o.Price}}
		heap.Push(lad, item)
		idx[price] = item
	}
	item.level.Size += o.Quantity
	item.level.OrderCount++
	item.level.LastUpdate = o.Timestamp
	heap.Fix(lad, item.index)

	if o.Side == Buy {
		b.totalBidVolume += o.Quantity
	} else {
		b.totalAskVolume += o.Quantity
	}

	b.recomputeBestLocked(o.Side)
	b.sequence++
	b.lastUpdate = o.Timestamp
	return item.level, nil
}

// RemoveQuantity decrements size at price on side by qty, removing the
// level entirely once its size reaches zero and recomputing the cached
// best quote if that level held it.
func (b *OrderBook) RemoveQuantity(side Side, priceF float64, qty float64) error {
	if qty <= 0 {
		return cerrors.New(cerrors.InvalidArgument, "remove quantity must be positive")
	}
	price, err := NewPrice(priceF)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lad, idx := b.sideLocked(side)
	item, ok := idx[price]
	if !ok {
		return cerrors.Newf(cerrors.NotFound, "no level at price %.8f", priceF)
	}
	if item.level.Size < qty {
		return cerrors.Newf(cerrors.InsufficientSize, "level at %.8f holds %.8f, requested %.8f", priceF, item.level.Size, qty)
	}

	item.level.Size -= qty
	if side == Buy {
		b.totalBidVolume -= qty
	} else {
		b.totalAskVolume -= qty
	}

	if item.level.Size == 0 {
		heap.Remove(lad, item.index)
		delete(idx, price)
	} else {
		heap.Fix(lad, item.index)
	}

	b.recomputeBestLocked(side)
	b.sequence++
	b.lastUpdate = time.Now()
	return nil
}

func (b *OrderBook) sideLocked(side Side) (*ladder, map[Price]*ladderItem) {
	if side == Buy {
		return b.bids, b.bidIdx
	}
	return b.asks, b.askIdx
}

func (b *OrderBook) recomputeBestLocked(side Side) {
	lad, _ := b.sideLocked(side)
	top := lad.best()
	var p *float64
	if top != nil {
		v := top.level.Price
		p = &v
	}
	if side == Buy {
		b.bestBid = p
	} else {
		b.bestAsk = p
	}
}

// BBO returns the Level-1 best-bid-offer snapshot.
func (b *OrderBook) BBO() BBO {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := BBO{Symbol: b.symbol, Sequence: b.sequence, Timestamp: b.lastUpdate}

	if b.bestBid != nil {
		bp := *b.bestBid
		out.BidPrice = &bp
		if item := b.bidIdx[Price(bp)]; item != nil {
			sz := item.level.Size
			out.BidSize = &sz
		}
	}
	if b.bestAsk != nil {
		ap := *b.bestAsk
		out.AskPrice = &ap
		if item := b.askIdx[Price(ap)]; item != nil {
			sz := item.level.Size
			out.AskSize = &sz
		}
	}
	if out.BidPrice != nil && out.AskPrice != nil {
		spread := *out.AskPrice - *out.BidPrice
		mid := (*out.AskPrice + *out.BidPrice) / 2
		out.Spread = &spread
		out.Mid = &mid
	}
	return out
}

// SpreadBps returns 10000*(ask-bid)/mid when both sides exist and mid > 0.
func (b *OrderBook) SpreadBps() (float64, bool) {
	bbo := b.BBO()
	if bbo.Spread == nil || bbo.Mid == nil || *bbo.Mid <= 0 {
		return 0, false
	}
	return 10000 * (*bbo.Spread) / (*bbo.Mid), true
}

func sortedLevels(lad *ladder) []PriceLevel {
	items := make([]*ladderItem, len(lad.items))
	copy(items, lad.items)
	sort.Slice(items, func(i, j int) bool {
		return lad.better(items[i].level.Price, items[j].level.Price)
	})
	out := make([]PriceLevel, len(items))
	for i, it := range items {
		out[i] = *it.level
	}
	return out
}

// Snapshot returns up to depth levels from each side, best-first.
func (b *OrderBook) Snapshot(depth int) Level2 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids := sortedLevels(b.bids)
	asks := sortedLevels(b.asks)
	if depth >= 0 && len(bids) > depth {
		bids = bids[:depth]
	}
	if depth >= 0 && len(asks) > depth {
		asks = asks[:depth]
	}
	return Level2{
		Symbol:    b.symbol,
		Bids:      bids,
		Asks:      asks,
		Sequence:  b.sequence,
		Timestamp: b.lastUpdate,
	}
}

// VWAP returns the volume-weighted average price over the top-depth
// levels of side, or false if those levels carry no size.
func (b *OrderBook) VWAP(side Side, depth int) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lad, _ := b.sideLocked(side)
	levels := sortedLevels(lad)
	if depth >= 0 && len(levels) > depth {
		levels = levels[:depth]
	}

	var numerator, denominator float64
	for _, lvl := range levels {
		numerator += lvl.Price * lvl.Size
		denominator += lvl.Size
	}
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// Stats returns the per-book aggregate view.
func (b *OrderBook) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{
		Symbol:         b.symbol,
		TotalBidVolume: b.totalBidVolume,
		TotalAskVolume: b.totalAskVolume,
		Sequence:       b.sequence,
	}
	if bps, ok := b.spreadBpsLocked(); ok {
		s.SpreadBps = &bps
	}
	return s
}

func (b *OrderBook) spreadBpsLocked() (float64, bool) {
	if b.bestBid == nil || b.bestAsk == nil {
		return 0, false
	}
	mid := (*b.bestBid + *b.bestAsk) / 2
	if mid <= 0 {
		return 0, false
	}
	return 10000 * (*b.bestAsk - *b.bestBid) / mid, true
}

// Clear resets the book to empty, bumping the sequence once.
func (b *OrderBook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = newLadder(b.bids.better)
	b.asks = newLadder(b.asks.better)
	b.bidIdx = make(map[Price]*ladderItem)
	b.askIdx = make(map[Price]*ladderItem)
	b.bestBid = nil
	b.bestAsk = nil
	b.totalBidVolume = 0
	b.totalAskVolume = 0
	b.sequence++
	b.lastUpdate = time.Now()
}

// Sequence returns the current optimistic-concurrency token.
func (b *OrderBook) Sequence() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sequence
}

// ReplaceLevels atomically replaces both ladders with the given levels,
// recomputing best bid/ask and cumulative volumes in one mutation. This
// is the bulk-ingest path supplementing per-order AddOrder/RemoveQuantity,
// grounded on the original Rust orderbook.rs's process_market_data
// (clear-then-rebuild from two slices). A level with a NaN price or a
// non-positive size is rejected before the book is touched.
func (b *OrderBook) ReplaceLevels(bids, asks []PriceLevel) error {
	for _, lvl := range bids {
		if _, err := NewPrice(lvl.Price); err != nil {
			return err
		}
		if lvl.Size <= 0 {
			return cerrors.New(cerrors.InvalidArgument, "level size must be positive")
		}
	}
	for _, lvl := range asks {
		if _, err := NewPrice(lvl.Price); err != nil {
			return err
		}
		if lvl.Size <= 0 {
			return cerrors.New(cerrors.InvalidArgument, "level size must be positive")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = newLadder(b.bids.better)
	b.asks = newLadder(b.asks.better)
	b.bidIdx = make(map[Price]*ladderItem)
	b.askIdx = make(map[Price]*ladderItem)
	b.totalBidVolume = 0
	b.totalAskVolume = 0

	for _, lvl := range bids {
		lvl := lvl
		item := &ladderItem{level: &lvl}
		heap.Push(b.bids, item)
		b.bidIdx[Price(lvl.Price)] = item
		b.totalBidVolume += lvl.Size
	}
	for _, lvl := range asks {
		lvl := lvl
		item := &ladderItem{level: &lvl}
		heap.Push(b.asks, item)
		b.askIdx[Price(lvl.Price)] = item
		b.totalAskVolume += lvl.Size
	}

	b.recomputeBestLocked(Buy)
	b.recomputeBestLocked(Sell)
	b.sequence++
	b.lastUpdate = time.Now()
	return nil
}
