package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.LinkTTL != 24*time.Hour {
		t.Errorf("LinkTTL = %v", cfg.LinkTTL)
	}
	if cfg.URLScheme != "http" || cfg.URLHostName != "localhost:8080" {
		t.Errorf("scheme/host = %q %q", cfg.URLScheme, cfg.URLHostName)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("CleanupInterval = %v", cfg.CleanupInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LINK_TTL_SECONDS", "120")
	t.Setenv("CLEANUP_INTERVAL_MS", "5000")
	t.Setenv("URL_SCHEME", "https")
	t.Setenv("URL_HOSTNAME", "sho.rt")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATELIMIT_ENABLED", "false")

	cfg := Load()

	if cfg.LinkTTL != 2*time.Minute {
		t.Errorf("LinkTTL = %v, want 2m", cfg.LinkTTL)
	}
	if cfg.CleanupInterval != 5*time.Second {
		t.Errorf("CleanupInterval = %v, want 5s", cfg.CleanupInterval)
	}
	if cfg.URLScheme != "https" || cfg.URLHostName != "sho.rt" {
		t.Errorf("scheme/host = %q %q", cfg.URLScheme, cfg.URLHostName)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitEnabled {
		t.Error("RATELIMIT_ENABLED=false 没生效")
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("LINK_TTL_SECONDS", "-5")
	t.Setenv("CLEANUP_INTERVAL_MS", "abc")

	cfg := Load()

	if cfg.LinkTTL != 24*time.Hour {
		t.Errorf("非法 TTL 应当保留默认值, got %v", cfg.LinkTTL)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("非法周期应当保留默认值, got %v", cfg.CleanupInterval)
	}
}
