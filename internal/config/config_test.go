package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FITTRACK_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.DSN != "fittrack.db" {
		t.Errorf("Database = %+v, want sqlite/fittrack.db", cfg.Database)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.RateLimit.Mutations != 60 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FITTRACK_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("FITTRACK_SERVER_ENV", "production")
	t.Setenv("FITTRACK_SERVER_TIMEZONE", "Europe/Berlin")
	t.Setenv("FITTRACK_CACHE_TTL", "90s")
	t.Setenv("FITTRACK_CORS_ALLOWED_ORIGINS", "https://app.fittrack.dev, https://*.fittrack.dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL)
	}

	want := []string{"https://app.fittrack.dev", "https://*.fittrack.dev"}
	if strings.Join(cfg.CORS.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("AllowedOrigins = %q, want %q", cfg.CORS.AllowedOrigins, want)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location = %s, want Europe/Berlin", loc)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database:  DatabaseConfig{Driver: DriverSQLite, DSN: "fittrack.db"},
			Auth:      AuthConfig{JWTSecret: "secret"},
			RateLimit: RateLimitConfig{Requests: 300, Mutations: 60, Window: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid sqlite", func(c *Config) {}, ""},
		{"valid supabase", func(c *Config) {
			c.Database.Driver = DriverSupabase
			c.Supabase = SupabaseConfig{URL: "https://x.supabase.co", ServiceKey: "key"}
			c.Auth.JWTSecret = ""
		}, ""},
		{"supabase without url", func(c *Config) {
			c.Database.Driver = DriverSupabase
			c.Supabase.ServiceKey = "key"
		}, "SUPABASE_URL"},
		{"supabase without key", func(c *Config) {
			c.Database.Driver = DriverSupabase
			c.Supabase.URL = "https://x.supabase.co"
		}, "SUPABASE_SERVICE_KEY"},
		{"postgres without dsn", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.DSN = ""
		}, "database.dsn"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, "unknown database.driver"},
		{"no auth", func(c *Config) { c.Auth.JWTSecret = "" }, "auth requires"},
		{"zero rate limit", func(c *Config) { c.RateLimit.Mutations = 0 }, "ratelimit"},
		{"bad timezone", func(c *Config) { c.Server.Timezone = "Mars/Olympus" }, "server.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
