package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestManager(t *testing.T) *HFTMemoryManager {
	t.Helper()
	cfg := &HFTMemoryConfig{
		EnableStringPools:      true,
		EnableMemoryMonitoring: false,
		EnableLeakDetection:    false,
	}
	m := NewHFTMemoryManager(cfg, zap.NewNop())
	t.Cleanup(m.Close)
	return m
}

func TestNewHFTMemoryManagerDefaultsOnNilConfig(t *testing.T) {
	m := NewHFTMemoryManager(nil, nil)
	defer m.Close()
	require.NotNil(t, m.config)
	assert.True(t, m.config.EnableStringPools)
	assert.Equal(t, 10*time.Second, m.config.MonitoringInterval)
}

func TestNewHFTMemoryManagerAppliesGCTuningWithoutPanicking(t *testing.T) {
	m := NewHFTMemoryManager(&HFTMemoryConfig{
		GCTargetPercentage:     50,
		MaxHeapSize:            1 << 30,
		EnableMemoryMonitoring: false,
	}, zap.NewNop())
	defer m.Close()
}

func TestGetStringInternsRepeatedValues(t *testing.T) {
	m := newTestManager(t)
	a := m.GetString("AAPL")
	b := m.GetString("AAPL")
	assert.Equal(t, a, b)
}

func TestGetStringPassthroughWhenDisabled(t *testing.T) {
	m := NewHFTMemoryManager(&HFTMemoryConfig{EnableStringPools: false}, zap.NewNop())
	defer m.Close()
	assert.Equal(t, "AAPL", m.GetString("AAPL"))
}

func TestCheckForLeaksDetectsGrowthAboveThreshold(t *testing.T) {
	m := newTestManager(t)
	m.config.LeakDetectionThreshold = 1
	core, logs := observer.New(zap.WarnLevel)
	m.logger = zap.New(core)

	last := &MemoryStats{HeapAlloc: 0, Timestamp: time.Now()}
	current := &MemoryStats{HeapAlloc: 1 << 20, Timestamp: time.Now().Add(time.Second)}

	m.checkForLeaks(last, current)
	assert.Equal(t, 1, logs.FilterMessage("heap growth exceeded leak threshold").Len())
}

func TestStringPoolInternsAcrossInstances(t *testing.T) {
	sp := NewStringPool()
	a := sp.Get("NVDA")
	b := sp.Get("NVDA")
	assert.Equal(t, a, b)
}
