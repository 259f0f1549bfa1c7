package orderbook

import (
	"sync"

	"go.uber.org/zap"
)

// Manager maps symbol to OrderBook, creating books lazily on first
// reference (§3 ownership/lifecycle); symbols are never removed
// implicitly.
//
// AddOrder takes the symbol explicitly rather than reading it off the
// Order, resolving the Open Question in spec §9: the original
// OrderBookManager.add_order received an Order with no symbol field and
// always failed (confirmed in original_source/orderbook.rs, where
// add_order unconditionally returns an error) — dead code never
// reachable with a real caller.
type Manager struct {
	mu     sync.RWMutex
	books  map[string]*OrderBook
	logger *zap.Logger
}

// NewManager creates an empty Manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		books:  make(map[string]*OrderBook),
		logger: logger,
	}
}

// getOrCreate returns the book for symbol, creating it under a write
// lock if this is the first reference.
func (m *Manager) getOrCreate(symbol string) *OrderBook {
	m.mu.RLock()
	book, ok := m.books[symbol]
	m.mu.RUnlock()
	if ok {
		return book
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if book, ok := m.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol, m.logger)
	m.books[symbol] = book
	return book
}

// AddOrder routes o to symbol's book, creating the book on first
// reference.
func (m *Manager) AddOrder(symbol string, o Order) (*PriceLevel, error) {
	return m.getOrCreate(symbol).AddOrder(o)
}

// ReplaceLevels routes a bulk level replacement to symbol's book,
// creating the book on first reference.
func (m *Manager) ReplaceLevels(symbol string, bids, asks []PriceLevel) error {
	return m.getOrCreate(symbol).ReplaceLevels(bids, asks)
}

// Get returns the book for symbol if it has been referenced before.
func (m *Manager) Get(symbol string) (*OrderBook, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	book, ok := m.books[symbol]
	return book, ok
}

// Symbols returns every symbol with a book, in no particular order.
func (m *Manager) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.books))
	for s := range m.books {
		out = append(out, s)
	}
	return out
}
