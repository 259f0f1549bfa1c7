package store

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

// HotCache is the bounded-capacity, TTL-plus-time-to-idle associative
// cache from §3/§4.2. It wraps go-cache (the same library the teacher
// uses in internal/orders/service_core.go for order caching) for
// insert-based TTL expiry, and layers two things go-cache lacks:
// capacity-bounded eviction and time-to-idle (T/2) tracking.
type HotCache struct {
	inner   *cache.Cache
	ttl     time.Duration
	idleTTL time.Duration
	max     int
	logger  *zap.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHotCache builds a HotCache from cfg. TTLSeconds must be positive.
func NewHotCache(cfg config.HotCacheConfig, logger *zap.Logger) (*HotCache, error) {
	if cfg.TTLSeconds <= 0 {
		return nil, cerrors.New(cerrors.InvalidArgument, "hot cache ttl_seconds must be positive")
	}
	if cfg.MaxCapacity <= 0 {
		return nil, cerrors.New(cerrors.InvalidArgument, "hot cache max_capacity must be positive")
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	idleTTL := ttl / 2

	h := &HotCache{
		inner:    cache.New(ttl, ttl/2),
		ttl:      ttl,
		idleTTL:  idleTTL,
		max:      cfg.MaxCapacity,
		logger:   logger,
		lastSeen: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
	}
	go h.idleSweeper()
	return h, nil
}

// Insert stores value under key, evicting the least-recently-touched
// entry first if the cache is at capacity and key is new.
func (h *HotCache) Insert(key string, value interface{}) error {
	h.mu.Lock()
	if _, exists := h.lastSeen[key]; !exists && len(h.lastSeen) >= h.max {
		h.evictOldestLocked()
	}
	h.lastSeen[key] = time.Now()
	h.mu.Unlock()

	h.inner.Set(key, value, h.ttl)
	return nil
}

// Get returns the value for key and whether it was present. A hit
// refreshes the entry's idle timer but not its TTL-since-insert clock,
// matching §4.2's "age since insert" vs. "idle since last access" split.
func (h *HotCache) Get(key string) (interface{}, bool) {
	v, ok := h.inner.Get(key)
	if !ok {
		h.mu.Lock()
		delete(h.lastSeen, key)
		h.mu.Unlock()
		return nil, false
	}
	h.mu.Lock()
	h.lastSeen[key] = time.Now()
	h.mu.Unlock()
	return v, true
}

// Remove evicts key immediately.
func (h *HotCache) Remove(key string) {
	h.inner.Delete(key)
	h.mu.Lock()
	delete(h.lastSeen, key)
	h.mu.Unlock()
}

// Stats returns the current entry count and go-cache's item count as
// the weighted size proxy (every entry has unit weight in this cache).
func (h *HotCache) Stats() (count int, weightedSize int64) {
	n := h.inner.ItemCount()
	return n, int64(n)
}

// Close stops the background idle sweeper. Safe to call more than once.
func (h *HotCache) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *HotCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, t := range h.lastSeen {
		if first || t.Before(oldest) {
			oldestKey, oldest, first = k, t, false
		}
	}
	if oldestKey != "" {
		delete(h.lastSeen, oldestKey)
		h.inner.Delete(oldestKey)
	}
}

// idleSweeper runs on a background goroutine, evicting entries whose
// time since last access exceeds the idle TTL. go-cache's own janitor
// already handles the insert-based TTL half of eviction.
func (h *HotCache) idleSweeper() {
	interval := h.idleTTL
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case now := <-ticker.C:
			h.mu.Lock()
			for k, seen := range h.lastSeen {
				if now.Sub(seen) > h.idleTTL {
					delete(h.lastSeen, k)
					h.inner.Delete(k)
				}
			}
			h.mu.Unlock()
		}
	}
}
