package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("KDF_ITERATIONS", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("INSIGHT_CACHE_TTL", "")

	cfg := LoadConfig()

	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "127.0.0.1:9999")
	}
	if cfg.KDFIterations != 310000 {
		t.Errorf("KDFIterations = %d, want 310000", cfg.KDFIterations)
	}
	if cfg.InsightCacheTTL != 15*time.Minute {
		t.Errorf("InsightCacheTTL = %v, want 15m", cfg.InsightCacheTTL)
	}
	if len(cfg.SessionSecret) < 32 {
		t.Errorf("generated session secret too short: %d", len(cfg.SessionSecret))
	}
}

func TestLoadConfig_IterationFloor(t *testing.T) {
	t.Setenv("KDF_ITERATIONS", "1000")
	t.Setenv("SESSION_SECRET", "")

	cfg := LoadConfig()
	if cfg.KDFIterations != MinKDFIterations {
		t.Errorf("KDFIterations = %d, want %d", cfg.KDFIterations, MinKDFIterations)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("MM_BOOL", "true")
	t.Setenv("MM_BAD_BOOL", "maybe")
	t.Setenv("MM_DURATION", "90s")
	t.Setenv("MM_INT", "abc")

	if !getEnvAsBool("MM_BOOL", false) {
		t.Error("expected MM_BOOL to parse as true")
	}
	if getEnvAsBool("MM_BAD_BOOL", false) {
		t.Error("expected fallback for invalid boolean")
	}
	if got := getEnvAsDuration("MM_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("duration = %v, want 90s", got)
	}
	if got := getEnvAsInt("MM_INT", 7); got != 7 {
		t.Errorf("int fallback = %d, want 7", got)
	}
}
