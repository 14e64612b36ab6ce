package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Response modes for the bot gateway
const (
	ModeStructured = "structured"
	ModeRaw        = "raw"
)

// DefaultAPIURL is the upstream bot endpoint used when BOT_API_URL is not set.
const DefaultAPIURL = "https://bm0l8cj2xl.execute-api.ap-northeast-2.amazonaws.com/default/llm-lamda"

// Config holds all BOT_* environment options, read once at startup and
// passed explicitly to the handler and gateway client.
type Config struct {
	Name           string   `default:"ProBot"`
	APIURL         string   `envconfig:"API_URL"`
	ResponseMode   string   `envconfig:"RESPONSE_MODE" default:"structured"`
	TimeoutSeconds int      `envconfig:"TIMEOUT_SECONDS" default:"45"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string   `envconfig:"JWT_SECRET"`
}

// Load reads the BOT_* environment variables and validates them.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("BOT", cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration from environment: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid BOT_API_URL: %w", err)
	}

	if cfg.ResponseMode != ModeStructured && cfg.ResponseMode != ModeRaw {
		return nil, fmt.Errorf("BOT_RESPONSE_MODE must be %q or %q, got %q", ModeStructured, ModeRaw, cfg.ResponseMode)
	}

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("BOT_TIMEOUT_SECONDS must be positive, got %d", cfg.TimeoutSeconds)
	}

	return cfg, nil
}

// Timeout returns the total bot call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AuthEnabled reports whether the WebSocket endpoint requires a JWT token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
