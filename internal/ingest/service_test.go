//go:build unix

package ingest_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
	"github.com/abdoElHodaky/tradsys-core/internal/fastchannel"
	"github.com/abdoElHodaky/tradsys-core/internal/hft/memory"
	"github.com/abdoElHodaky/tradsys-core/internal/ingest"
	"github.com/abdoElHodaky/tradsys-core/internal/orderbook"
	"github.com/abdoElHodaky/tradsys-core/internal/ringlog"
	"github.com/abdoElHodaky/tradsys-core/internal/store"
)

func newTestParams(t *testing.T) (ingest.Params, *fxtest.Lifecycle) {
	t.Helper()
	logger := zap.NewNop()

	log, err := ringlog.Open(config.RingLogConfig{
		FilePath: filepath.Join(t.TempDir(), "ringlog.dat"),
		SizeMB:   1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	ch, err := fastchannel.New[store.MarketData](16)
	require.NoError(t, err)

	hotCache, err := store.NewHotCache(config.HotCacheConfig{MaxCapacity: 100, TTLSeconds: 60}, logger)
	require.NoError(t, err)
	t.Cleanup(hotCache.Close)

	prices, err := store.NewPriceArray(config.PriceArrayConfig{Capacity: 16})
	require.NoError(t, err)

	avg, err := store.NewMovingAverage(config.MovingAverageConfig{Period: 3})
	require.NoError(t, err)

	books := orderbook.NewManager(logger)

	mem := memory.NewHFTMemoryManager(&memory.HFTMemoryConfig{EnableStringPools: true}, logger)
	t.Cleanup(mem.Close)

	lc := fxtest.NewLifecycle(t)

	return ingest.Params{
		Lifecycle: lc,
		Logger:    logger,
		Log:       log,
		Channel:   ch,
		HotCache:  hotCache,
		Prices:    prices,
		Average:   avg,
		Books:     books,
		Memory:    mem,
	}, lc
}

func symbolBytes(s string) [8]byte {
	var out [8]byte
	copy(out[:], s)
	return out
}

func TestServicePublishUpdatesAllComponents(t *testing.T) {
	params, lc := newTestParams(t)
	svc := ingest.New(params)

	ctx := context.Background()
	require.NoError(t, lc.Start(ctx))
	defer lc.Stop(ctx)

	md := store.MarketData{
		Symbol: symbolBytes("AAPL"),
		Price:  150.25,
		Volume: 100,
		Bid:    150.20,
		Ask:    150.30,
	}
	require.NoError(t, svc.Publish(md))

	assert.Eventually(t, func() bool {
		_, ok := params.HotCache.Get("AAPL")
		return ok
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		book, ok := params.Books.Get("AAPL")
		if !ok {
			return false
		}
		bbo := book.BBO()
		return bbo.BidPrice != nil && *bbo.BidPrice == 150.20
	}, time.Second, 10*time.Millisecond)
}
