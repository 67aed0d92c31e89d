package config

import (
	"testing"
	"time"

	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "redis")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORAGE_DRIVER")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected default storage driver memory, got %q", cfg.StorageDriver)
	}
	if !cfg.CacheEnabled {
		t.Fatalf("expected cache enabled by default")
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected default cache TTL: %s", cfg.CacheTTL)
	}
	if cfg.RolloverMaxWorkers != 8 {
		t.Fatalf("unexpected default rollover workers: %d", cfg.RolloverMaxWorkers)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected default log level")
	}
}

func TestLoad_StatsFeedRequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STATSFEED_ENABLED", "true")
	t.Setenv("STATSFEED_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STATSFEED_ENABLED=true without STATSFEED_BASE_URL")
	}
}

func TestLoad_StatsFeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STATSFEED_ENABLED", "true")
	t.Setenv("STATSFEED_BASE_URL", "https://stats.example.com")
	t.Setenv("STATSFEED_SEASON", "2027")
	t.Setenv("STATSFEED_TIMEOUT", "20s")
	t.Setenv("STATSFEED_MAX_RETRIES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.StatsFeedEnabled {
		t.Fatalf("expected StatsFeedEnabled=true")
	}
	if cfg.StatsFeedSeason != 2027 {
		t.Fatalf("unexpected StatsFeedSeason: %d", cfg.StatsFeedSeason)
	}
	if cfg.StatsFeedTimeout != 20*time.Second {
		t.Fatalf("unexpected StatsFeedTimeout: %s", cfg.StatsFeedTimeout)
	}
	if cfg.StatsFeedMaxRetries != 2 {
		t.Fatalf("unexpected StatsFeedMaxRetries: %d", cfg.StatsFeedMaxRetries)
	}
}

func TestLoad_AuditQueueRequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AUDIT_QUEUE_ENABLED", "true")
	t.Setenv("AUDIT_QUEUE_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when AUDIT_QUEUE_ENABLED=true without AUDIT_QUEUE_BASE_URL")
	}
}

func TestLoad_AuthTokensCSV(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AUTH_TOKENS", "tok-a:mgr-a:alice, tok-b:mgr-b:bob:admin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.AuthTokens) != 2 {
		t.Fatalf("expected 2 auth token entries, got %d", len(cfg.AuthTokens))
	}
	if cfg.AuthTokens[1] != "tok-b:mgr-b:bob:admin" {
		t.Fatalf("unexpected second entry: %q", cfg.AuthTokens[1])
	}
}
