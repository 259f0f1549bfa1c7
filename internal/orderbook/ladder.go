package orderbook

// ladderItem is one price level plus its current position in the
// ladder's heap, needed for O(log n) arbitrary-element removal via
// heap.Fix/heap.Remove — the classic indexed-heap pattern, adapted from
// the teacher's OrderHeap in internal/core/matching/order_book.go.
type ladderItem struct {
	level *PriceLevel
	index int
}

// ladder is a container/heap-backed price ladder. better reports
// whether price a should sit closer to the root (i.e. is "best") than
// price b: greater-than for bids, less-than for asks.
type ladder struct {
	items  []*ladderItem
	better func(a, b float64) bool
}

func newLadder(better func(a, b float64) bool) *ladder {
	return &ladder{better: better}
}

func (l *ladder) Len() int { return len(l.items) }

func (l *ladder) Less(i, j int) bool {
	return l.better(l.items[i].level.Price, l.items[j].level.Price)
}

func (l *ladder) Swap(i, j int) {
	l.items[i], l.items[j] = l.items[j], l.items[i]
	l.items[i].index = i
	l.items[j].index = j
}

func (l *ladder) Push(x interface{}) {
	item := x.(*ladderItem)
	item.index = len(l.items)
	l.items = append(l.items, item)
}

func (l *ladder) Pop() interface{} {
	old := l.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	l.items = old[:n-1]
	return item
}

// best returns the root item (the best price) without mutating the heap.
func (l *ladder) best() *ladderItem {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[0]
}
