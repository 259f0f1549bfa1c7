package store_test

import (
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
	"github.com/abdoElHodaky/tradsys-core/internal/store"
)

func TestHotCacheGetAfterInsert(t *testing.T) {
	c, err := store.NewHotCache(config.HotCacheConfig{MaxCapacity: 10, TTLSeconds: 60}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Insert("k1", 42))
	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestHotCacheTTLExpiry(t *testing.T) {
	c, err := store.NewHotCache(config.HotCacheConfig{MaxCapacity: 10, TTLSeconds: 1}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Insert("k1", "v1"))
	time.Sleep(1200 * time.Millisecond)

	_, ok := c.Get("k1")
	assert.False(t, ok)
}

func TestHotCacheCapacityBound(t *testing.T) {
	c, err := store.NewHotCache(config.HotCacheConfig{MaxCapacity: 1000, TTLSeconds: 60}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	var lastKey string
	for i := 0; i < 10000; i++ {
		lastKey = "key-" + string(rune(i))
		_ = c.Insert(lastKey, i)
	}

	count, _ := c.Stats()
	assert.LessOrEqual(t, count, 1000)

	_, ok := c.Get(lastKey)
	assert.True(t, ok)
}

func TestPriceArrayPushAndReduce(t *testing.T) {
	arr, err := store.NewPriceArray(config.PriceArrayConfig{Capacity: 8})
	require.NoError(t, err)

	prices := []float64{10, 20, 30, 40}
	for _, p := range prices {
		require.NoError(t, arr.Push(store.MarketData{Price: p}))
	}

	avg, err := arr.Avg(0, 4)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, avg, 1e-9)

	max, err := arr.Max(0, 4)
	require.NoError(t, err)
	assert.Equal(t, 40.0, max)
}

func TestPriceArrayCapacityExceeded(t *testing.T) {
	arr, err := store.NewPriceArray(config.PriceArrayConfig{Capacity: 1})
	require.NoError(t, err)

	require.NoError(t, arr.Push(store.MarketData{Price: 1}))
	err = arr.Push(store.MarketData{Price: 2})
	assert.True(t, cerrors.Is(err, cerrors.CapacityExceeded))
}

func TestPriceArrayOutOfBounds(t *testing.T) {
	arr, err := store.NewPriceArray(config.PriceArrayConfig{Capacity: 4})
	require.NoError(t, err)
	require.NoError(t, arr.Push(store.MarketData{Price: 1}))

	_, err = arr.Slice(0, 5)
	assert.True(t, cerrors.Is(err, cerrors.OutOfBounds))
}

func TestMovingAverageWindow(t *testing.T) {
	ma, err := store.NewMovingAverage(config.MovingAverageConfig{Period: 3})
	require.NoError(t, err)

	outputs := []float64{
		ma.Add(10),
		ma.Add(20),
		ma.Add(30),
		ma.Add(40),
	}
	expected := []float64{10, 15, 20, 30}
	for i := range expected {
		assert.InDelta(t, expected[i], outputs[i], 1e-9)
	}
}

func TestMovingAverageRecomputeDoesNotChangeObservedOutput(t *testing.T) {
	ma, err := store.NewMovingAverage(config.MovingAverageConfig{Period: 4})
	require.NoError(t, err)

	for _, x := range []float64{1, 2, 3, 4, 5, 6} {
		ma.Add(x)
	}
	before := ma.Current()
	ma.Recompute()
	after := ma.Current()
	assert.InDelta(t, before, after, 1e-9)
}

func TestMarketDataIs64Bytes(t *testing.T) {
	// Guards against accidental field changes breaking the §3 layout
	// invariant; the package init panics first if this ever regresses.
	assert.Equal(t, uintptr(64), unsafe.Sizeof(store.MarketData{}))
}

func TestMarketDataEncodeDecodeRoundTrip(t *testing.T) {
	var symbol [8]byte
	copy(symbol[:], "AAPL")
	md := store.MarketData{
		Symbol:      symbol,
		Price:       150.25,
		Volume:      1200,
		Timestamp:   1700000000,
		Bid:         150.20,
		Ask:         150.30,
		SessionHigh: 151.00,
		SessionLow:  149.5,
		Sequence:    42,
	}

	buf := md.Encode()
	assert.Len(t, buf, 64)

	decoded, err := store.DecodeMarketData(buf)
	require.NoError(t, err)
	assert.Equal(t, md, decoded)
}

func TestMarketDataDecodeRejectsShortBuffer(t *testing.T) {
	_, err := store.DecodeMarketData(make([]byte, 10))
	assert.Error(t, err)
}

func TestMarketDataEncodeIntoReusesCapacityAndMatchesEncode(t *testing.T) {
	var symbol [8]byte
	copy(symbol[:], "MSFT")
	md := store.MarketData{Symbol: symbol, Price: 310.5, Sequence: 7}

	scratch := make([]byte, 0, 64)
	buf := md.EncodeInto(scratch[:0])
	assert.Len(t, buf, 64)
	assert.Equal(t, 64, cap(buf), "EncodeInto should not need to grow a capacity-64 buffer")
	assert.Equal(t, md.Encode(), buf)
}
