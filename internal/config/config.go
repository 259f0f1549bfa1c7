// Package config loads the core's component configuration via viper,
// following the nested-struct-with-mapstructure-tags shape used
// throughout the rest of the codebase.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// RingLogConfig configures the memory-mapped append log (§4.1).
type RingLogConfig struct {
	FilePath string `mapstructure:"file_path"`
	// SizeMB is the ring size in MiB; must be a power of two.
	SizeMB int `mapstructure:"size_mb"`
}

// HotCacheConfig configures the TTL/idle-bounded associative cache (§4.2).
type HotCacheConfig struct {
	MaxCapacity int `mapstructure:"max_capacity"`
	TTLSeconds  int `mapstructure:"ttl_seconds"`
}

// PriceArrayConfig configures the structure-of-arrays price history (§4.2).
type PriceArrayConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// MovingAverageConfig configures the sliding-window average (§4.2).
type MovingAverageConfig struct {
	Period int `mapstructure:"period"`
}

// FastChannelConfig configures the bounded MPSC primitive (§5/§6/§7).
type FastChannelConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// NUMAConfig is intentionally empty: §6 specifies no construction-time
// configuration for the NUMA scheduler (topology is discovered, service
// placement is policy-fixed). Kept for symmetry with the other
// component configs and as a home for future per-deployment overrides.
type NUMAConfig struct{}

// Config is the root configuration for the core.
type Config struct {
	// Environment selects the zap logger preset ("development" or
	// "production").
	Environment string `mapstructure:"environment"`

	RingLog       RingLogConfig       `mapstructure:"ring_log"`
	HotCache      HotCacheConfig      `mapstructure:"hot_cache"`
	PriceArray    PriceArrayConfig    `mapstructure:"price_array"`
	MovingAverage MovingAverageConfig `mapstructure:"moving_average"`
	FastChannel   FastChannelConfig   `mapstructure:"fast_channel"`
	NUMA          NUMAConfig          `mapstructure:"numa"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads configuration from configPath (a directory containing
// config.yaml) plus TRADSYS_-prefixed environment variables, falling
// back to defaults when no file is present. Subsequent calls return the
// already-loaded configuration.
func Load(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		cfg = &Config{}
		setDefaults(cfg)

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("TRADSYS")
		// Nested keys map to underscore names (ring_log.size_mb ->
		// TRADSYS_RING_LOG_SIZE_MB); binding each key makes viper consult
		// the environment even when no config file declares the key.
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		for _, key := range []string{
			"environment",
			"ring_log.file_path", "ring_log.size_mb",
			"hot_cache.max_capacity", "hot_cache.ttl_seconds",
			"price_array.capacity", "moving_average.period", "fast_channel.capacity",
		} {
			_ = v.BindEnv(key)
		}

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(cfg); unmarshalErr != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
			return
		}
	})

	return cfg, err
}

func setDefaults(c *Config) {
	c.Environment = "development"

	c.RingLog.FilePath = "ringlog.dat"
	c.RingLog.SizeMB = 64

	c.HotCache.MaxCapacity = 10000
	c.HotCache.TTLSeconds = 60

	c.PriceArray.Capacity = 1 << 16

	c.MovingAverage.Period = 20

	c.FastChannel.Capacity = 4096
}
