// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported STORE_DRIVER values.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env               string  `mapstructure:"APP_ENV"`
	StoreDriver       string  `mapstructure:"STORE_DRIVER"`
	SQLitePath        string  `mapstructure:"SQLITE_PATH"`
	DatabaseURL       string  `mapstructure:"DATABASE_URL"`
	RedisURL          string  `mapstructure:"REDIS_URL"`
	KeyPrefix         string  `mapstructure:"KEY_PREFIX"`
	BrowsingSessionID string  `mapstructure:"BROWSING_SESSION_ID"`
	LikesTTLMinutes   int     `mapstructure:"LIKES_TTL_MINUTES"`
	LogLevel          string  `mapstructure:"LOG_LEVEL"`
	LogFormat         string  `mapstructure:"LOG_FORMAT"`
	TracingEnabled    bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter   string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint      string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracingSampleRate float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	SeedOnStart       bool    `mapstructure:"SEED_ON_START"`
	HTTPAddr          string  `mapstructure:"HTTP_ADDR"`
	AllowedOrigins    string  `mapstructure:"ALLOWED_ORIGINS"`
}

// LoadConfig loads application configuration from .env, config file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is the common case outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read profile config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("SQLITE_PATH", "data/devblog.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("KEY_PREFIX", "devblog_v1_")
	viper.SetDefault("BROWSING_SESSION_ID", "")
	viper.SetDefault("LIKES_TTL_MINUTES", 24*60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("SEED_ON_START", true)
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("ALLOWED_ORIGINS", "")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.StoreDriver = strings.ToLower(strings.TrimSpace(config.StoreDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, sqlite, postgres or redis)", c.StoreDriver)
	}

	if c.KeyPrefix == "" {
		return errors.New("KEY_PREFIX is required")
	}
	if c.LikesTTLMinutes < 0 {
		return errors.New("LIKES_TTL_MINUTES cannot be negative")
	}

	switch c.TracingExporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown TRACING_EXPORTER %q (want stdout or otlp)", c.TracingExporter)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	return nil
}

// LikesTTL is how long a browsing session's like set survives without writes.
// Zero means no expiry.
func (c *Config) LikesTTL() time.Duration {
	return time.Duration(c.LikesTTLMinutes) * time.Minute
}
