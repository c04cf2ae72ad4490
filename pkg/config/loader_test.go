package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
)

func TestLoad(t *testing.T) {
	// Each subtest uses its own struct type: loaded configs are cached
	// per type for the lifetime of the process.

	t.Run("parses env vars", func(t *testing.T) {
		type parseConfig struct {
			Name    string        `env:"TEST_LOADER_NAME" envDefault:"fallback"`
			Timeout time.Duration `env:"TEST_LOADER_TIMEOUT" envDefault:"5s"`
		}

		t.Setenv("TEST_LOADER_NAME", "sessions")

		var cfg parseConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "sessions", cfg.Name)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("returns cached value on second load", func(t *testing.T) {
		type cachedConfig struct {
			Value string `env:"TEST_LOADER_CACHED" envDefault:"first"`
		}

		var first cachedConfig
		require.NoError(t, config.Load(&first))
		assert.Equal(t, "first", first.Value)

		// The env change is invisible: the type is already cached.
		t.Setenv("TEST_LOADER_CACHED", "second")

		var again cachedConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Value)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		var cfg *struct{}
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("fails on missing required var", func(t *testing.T) {
		type requiredConfig struct {
			Secret string `env:"TEST_LOADER_REQUIRED_MISSING,required"`
		}

		var cfg requiredConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})
}
