package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("SessionTokenTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{SessionTokenTTLHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.SessionTokenTTL())
	})

	t.Run("Cooldown converts minutes to duration", func(t *testing.T) {
		cfg := &Config{CooldownMinutes: 180}
		assert.Equal(t, 3*time.Hour, cfg.Cooldown())
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-positive session token TTL", func(t *testing.T) {
		cfg := &Config{SessionTokenTTLHours: 0, CooldownMinutes: 180}
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects negative cooldown", func(t *testing.T) {
		cfg := &Config{SessionTokenTTLHours: 24, CooldownMinutes: -1}
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts zero cooldown", func(t *testing.T) {
		cfg := &Config{SessionTokenTTLHours: 24, CooldownMinutes: 0}
		assert.NoError(t, cfg.Validate(true))
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":             os.Getenv("PORT"),
		"DATABASE_URL":     os.Getenv("DATABASE_URL"),
		"REDIS_URL":        os.Getenv("REDIS_URL"),
		"COOLDOWN_MINUTES": os.Getenv("COOLDOWN_MINUTES"),
		"LOG_LEVEL":        os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("PORT")
		os.Unsetenv("COOLDOWN_MINUTES")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 180, cfg.CooldownMinutes)
		assert.Equal(t, 24, cfg.SessionTokenTTLHours)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("PORT", "3000")
		os.Setenv("COOLDOWN_MINUTES", "60")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 60, cfg.CooldownMinutes)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		os.Setenv("REDIS_URL", "redis://localhost:6379")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required REDIS_URL", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Unsetenv("REDIS_URL")

		_, err := Load()
		assert.Error(t, err)
	})
}
