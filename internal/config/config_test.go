package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/tradsys-core/internal/config"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	t.Setenv("TRADSYS_RING_LOG_SIZE_MB", "")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 64, cfg.RingLog.SizeMB)
	assert.Equal(t, 10000, cfg.HotCache.MaxCapacity)
	assert.Equal(t, 60, cfg.HotCache.TTLSeconds)
	assert.Equal(t, 1<<16, cfg.PriceArray.Capacity)
	assert.Equal(t, 20, cfg.MovingAverage.Period)
	assert.Equal(t, 4096, cfg.FastChannel.Capacity)
}
