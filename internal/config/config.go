package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JonnyWalker81/fittrack/backend/internal/clock"
)

// Storage drivers accepted by database.driver
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Cache     CacheConfig     `mapstructure:"cache"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
	// Timezone is the IANA zone used to decide what "today" is. Empty means
	// the process local zone.
	Timezone string `mapstructure:"timezone"`
}

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// AuthConfig configures access token verification
type AuthConfig struct {
	// JWTSecret enables local HS256 verification instead of a Supabase round trip
	JWTSecret string `mapstructure:"jwt_secret"`
}

// CacheConfig configures the stats summary cache. Refresh and the daily
// rebuild drop a user's entry; rows written by other paths show up in the
// summary after at most TTL.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration. File is optional; when set, logs
// are also written there and rotated.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RateLimitConfig sets the general per-client limit and the stricter one on
// the habit mark endpoints. Both share Window.
type RateLimitConfig struct {
	Requests  int           `mapstructure:"requests"`
	Mutations int           `mapstructure:"mutations"`
	Window    time.Duration `mapstructure:"window"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.timezone", "")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "fittrack.db")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("ratelimit.requests", 300)
	v.SetDefault("ratelimit.mutations", 60)
	v.SetDefault("ratelimit.window", time.Minute)

	// Read from environment variables
	v.SetEnvPrefix("FITTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables used by hosting platforms
	_ = v.BindEnv("server.port", "FITTRACK_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "FITTRACK_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "FITTRACK_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("database.dsn", "FITTRACK_DATABASE_DSN", "DATABASE_URL")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.CORS.AllowedOrigins = splitOrigins(config.CORS.AllowedOrigins)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// splitOrigins accepts both a YAML list and a comma separated env value
func splitOrigins(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required when database.driver is %q", DriverSupabase)
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required when database.driver is %q", DriverSupabase)
		}
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when database.driver is %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database.driver %q (want supabase, sqlite or postgres)", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" && (c.Supabase.URL == "" || c.Supabase.ServiceKey == "") {
		return errors.New("auth requires either auth.jwt_secret or Supabase credentials")
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Mutations <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.requests, ratelimit.mutations and ratelimit.window must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves server.timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := clock.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
