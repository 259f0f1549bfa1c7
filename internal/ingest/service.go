// Package ingest wires the core's components into a single pipeline:
// callers hand a tick to Service.Publish, which frames it into the ring
// log (via a pooled scratch buffer) and the fast channel; a background
// worker drains the channel into the hot cache, price array, moving
// average, and order book, interning each tick's symbol through the
// memory manager's string pool along the way. Grounded on the teacher's
// gateway.Server (internal/gateway/server.go in the original tree) for
// the fx.In params struct and OnStart/OnStop lifecycle hook shape.
package ingest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/common/pool"
	"github.com/abdoElHodaky/tradsys-core/internal/fastchannel"
	"github.com/abdoElHodaky/tradsys-core/internal/hft/memory"
	"github.com/abdoElHodaky/tradsys-core/internal/orderbook"
	"github.com/abdoElHodaky/tradsys-core/internal/ringlog"
	"github.com/abdoElHodaky/tradsys-core/internal/store"
)

// encodeBufSize is the pooled scratch buffer capacity for framing a tick
// before it's appended to the ring log; store.MarketData.EncodeInto
// always appends exactly 64 bytes, so buffers never need to grow past
// this.
const encodeBufSize = 64

// Params are the dependencies the ingest service pulls from the fx
// graph, following the teacher's ServerParams convention.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Log       *ringlog.Log
	Channel   *fastchannel.MarketDataChannel
	HotCache  *store.HotCache
	Prices    *store.PriceArray
	Average   *store.MovingAverage
	Books     *orderbook.Manager
	Memory    *memory.HFTMemoryManager
}

// Service drains the market data channel into the rest of the core's
// components. The channel is the only point where ring-log producers and
// this single consumer goroutine hand off data, so Prices and Average,
// which are not internally synchronized, stay single-writer.
type Service struct {
	logger   *zap.Logger
	log      *ringlog.Log
	channel  *fastchannel.MarketDataChannel
	hotCache *store.HotCache
	prices   *store.PriceArray
	average  *store.MovingAverage
	books    *orderbook.Manager
	memory   *memory.HFTMemoryManager
	bufPool  *pool.ByteBufferPool

	done chan struct{}
}

// New builds a Service. Call Start to begin draining the channel.
func New(p Params) *Service {
	s := &Service{
		logger:   p.Logger,
		log:      p.Log,
		channel:  p.Channel,
		hotCache: p.HotCache,
		prices:   p.Prices,
		average:  p.Average,
		books:    p.Books,
		memory:   p.Memory,
		bufPool:  pool.NewByteBufferPool(encodeBufSize),
		done:     make(chan struct{}),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})

	return s
}

// Publish appends md to the durable ring log, then hands it to the fast
// channel for the in-process consumer. A ring log BufferFull (the reader
// has fallen behind) does not block the fast-path consumer: it is
// logged and publishing continues, matching §4.1's "writer never blocks
// on the reader" invariant.
//
// The framing buffer comes from bufPool: Log.Append copies it into the
// mmap region before returning, so it's safe to return to the pool right
// after the call instead of waiting on the channel hand-off below.
func (s *Service) Publish(md store.MarketData) error {
	buf := md.EncodeInto(s.bufPool.Get())
	if _, err := s.log.Append(buf); err != nil {
		s.logger.Warn("ring log append failed", zap.Error(err))
	}
	s.bufPool.Put(buf)

	return s.channel.Send(md)
}

// run drains the channel until it reports Disconnected, applying each
// tick to the hot cache, price array, moving average, and the tick's
// symbol's order book.
func (s *Service) run() {
	for {
		md, ok, err := s.channel.RecvTimeout(200 * time.Millisecond)
		if err != nil {
			if cerrors.Is(err, cerrors.Disconnected) {
				return
			}
			s.logger.Warn("ingest receive failed", zap.Error(err))
			continue
		}
		if !ok {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.apply(md)
	}
}

func (s *Service) apply(md store.MarketData) {
	// Every tick on a symbol repeats the same 8-byte array; intern the
	// decoded string so the hot cache and order book share one allocation
	// per symbol instead of one per tick (the price array keeps the raw
	// 8-byte array).
	symbol := s.memory.GetString(symbolString(md.Symbol))

	s.hotCache.Insert(symbol, md)

	if err := s.prices.Push(md); err != nil && !cerrors.Is(err, cerrors.CapacityExceeded) {
		s.logger.Warn("price array push failed", zap.String("symbol", symbol), zap.Error(err))
	}

	s.average.Add(md.Price)

	bids := []orderbook.PriceLevel{{Price: md.Bid, Size: float64(md.Volume), LastUpdate: time.Now()}}
	asks := []orderbook.PriceLevel{{Price: md.Ask, Size: float64(md.Volume), LastUpdate: time.Now()}}
	if err := s.books.ReplaceLevels(symbol, bids, asks); err != nil {
		s.logger.Warn("order book update failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

// Stop signals run to exit once it next wakes from RecvTimeout.
func (s *Service) Stop() {
	close(s.done)
}

func symbolString(raw [8]byte) string {
	return strings.TrimRight(string(raw[:]), "\x00")
}
