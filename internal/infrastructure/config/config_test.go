package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/goloan/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.StorageDriver != config.DriverPostgres {
		t.Fatalf("expected default storage driver postgres, got %s", cfg.StorageDriver)
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected default retry attempts 5, got %d", cfg.RetryMaxAttempts)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/loans.db")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_TTL", "45s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.DriverSQLite || cfg.SQLitePath != "/tmp/loans.db" {
		t.Fatalf("expected sqlite storage, got %s at %s", cfg.StorageDriver, cfg.SQLitePath)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.CacheTTL != 45*time.Second {
		t.Fatalf("expected cache TTL override, got %s", cfg.CacheTTL)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}

	if cfg.RunMigrations {
		t.Fatalf("expected migrations to be disabled")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "oracle")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "memory driver", mutate: func(c *config.Config) { c.StorageDriver = config.DriverMemory }},
		{name: "zero batch", mutate: func(c *config.Config) { c.OutboxBatchSize = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *config.Config) { c.RetryMaxAttempts = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{StorageDriver: config.DriverPostgres, OutboxBatchSize: 10, RetryMaxAttempts: 3}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
