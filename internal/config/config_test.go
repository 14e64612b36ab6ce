package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets the given variables for the duration of the test.
// t.Setenv alone is not enough: envconfig skips defaults for variables
// that are set but empty.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "BOT_NAME", "BOT_API_URL", "BOT_RESPONSE_MODE",
		"BOT_TIMEOUT_SECONDS", "BOT_ALLOWED_ORIGINS", "BOT_JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "ProBot" {
		t.Errorf("Expected default name 'ProBot', got %q", cfg.Name)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.ResponseMode != ModeStructured {
		t.Errorf("Expected default mode %q, got %q", ModeStructured, cfg.ResponseMode)
	}
	if cfg.Timeout() != 45*time.Second {
		t.Errorf("Expected default timeout 45s, got %v", cfg.Timeout())
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("Expected no allowed origins by default, got %v", cfg.AllowedOrigins)
	}
	if cfg.AuthEnabled() {
		t.Error("Auth should be disabled without a secret")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOT_NAME", "Proby")
	t.Setenv("BOT_API_URL", "http://localhost:9000/bot")
	t.Setenv("BOT_RESPONSE_MODE", "raw")
	t.Setenv("BOT_TIMEOUT_SECONDS", "10")
	t.Setenv("BOT_ALLOWED_ORIGINS", "http://localhost,http://localhost:8000")
	t.Setenv("BOT_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "Proby" {
		t.Errorf("Expected name 'Proby', got %q", cfg.Name)
	}
	if cfg.APIURL != "http://localhost:9000/bot" {
		t.Errorf("Unexpected API URL %q", cfg.APIURL)
	}
	if cfg.ResponseMode != ModeRaw {
		t.Errorf("Expected raw mode, got %q", cfg.ResponseMode)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", cfg.Timeout())
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost" {
		t.Errorf("Unexpected allowed origins %v", cfg.AllowedOrigins)
	}
	if !cfg.AuthEnabled() {
		t.Error("Auth should be enabled with a secret")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown response mode", key: "BOT_RESPONSE_MODE", value: "yaml"},
		{name: "zero timeout", key: "BOT_TIMEOUT_SECONDS", value: "0"},
		{name: "negative timeout", key: "BOT_TIMEOUT_SECONDS", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, "BOT_RESPONSE_MODE", "BOT_TIMEOUT_SECONDS")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject %s=%s", tt.key, tt.value)
			}
		})
	}
}
