package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	PushGatewayURL        string `env:"PUSH_GATEWAY_URL"`
	PushGatewayKey        string `env:"PUSH_GATEWAY_KEY"`
	SMSGatewayURL         string `env:"SMS_GATEWAY_URL"`
	SMSGatewayKey         string `env:"SMS_GATEWAY_KEY"`
	SessionTokenTTLHours  int    `env:"SESSION_TOKEN_TTL_HOURS" envDefault:"24"`
	CooldownMinutes       int    `env:"COOLDOWN_MINUTES" envDefault:"180"`
	ScanRateLimitPerMin   int    `env:"SCAN_RATE_LIMIT_PER_MIN" envDefault:"60"`
	SubmitRateLimitPerMin int    `env:"SUBMIT_RATE_LIMIT_PER_MIN" envDefault:"10"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionTokenTTL() time.Duration {
	return time.Duration(c.SessionTokenTTLHours) * time.Hour
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.SessionTokenTTLHours <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL_HOURS must be positive")
	}
	if c.CooldownMinutes < 0 {
		return fmt.Errorf("COOLDOWN_MINUTES must not be negative")
	}

	if isProduction {
		if c.PushGatewayURL == "" {
			log.Warn().Msg("PUSH_GATEWAY_URL is empty in production: push notifications disabled")
		}
		if c.SMSGatewayURL == "" {
			log.Warn().Msg("SMS_GATEWAY_URL is empty in production: SMS notifications disabled")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
