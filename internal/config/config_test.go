package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("RATE_LIMIT_LOGIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 1h", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 168h", cfg.RefreshTokenTTL)
	}
	want := map[string]int{"signup": 5, "login": 10, "refresh": 20, "mutate": 30, "read": 60, "bulk": 10, "budget": 20}
	for class, n := range want {
		if cfg.RateLimits[class] != n {
			t.Errorf("RateLimits[%s] = %d, want %d", class, cfg.RateLimits[class], n)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_LOGIN", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DSN() != "/tmp/ledger.db" {
		t.Errorf("sqlite config mismatch: driver=%q dsn=%q", cfg.DBDriver, cfg.DSN())
	}
	if cfg.MigrationURL() != "" {
		t.Errorf("sqlite should not use golang-migrate, got %q", cfg.MigrationURL())
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}
	if cfg.RateLimits["login"] != 3 {
		t.Errorf("login limit = %d, want 3", cfg.RateLimits["login"])
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad_driver", "DB_DRIVER", "oracle"},
		{"bad_duration", "ACCESS_TOKEN_TTL", "soon"},
		{"negative_duration", "REFRESH_TOKEN_TTL", "-1h"},
		{"bad_int", "REDIS_DB", "zero"},
		{"zero_limit", "RATE_LIMIT_READ", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "d"}
	if got, want := cfg.DSN(), "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
	cfg.DBDriver = "postgres"
	cfg.DBSSLMode = "disable"
	if got, want := cfg.MigrationURL(), "postgres://u:p@h:3306/d?sslmode=disable"; got != want {
		t.Errorf("MigrationURL = %q, want %q", got, want)
	}
}
