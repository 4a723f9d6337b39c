// Package config loads the server configuration.
//
// Sources, lowest to highest precedence: built-in defaults, an optional
// config file (YAML, JSON or TOML), a .env file in the working directory,
// and WEATHER_* environment variables. Nested keys map to env vars by
// upper-casing and replacing dots with underscores, e.g. store.path →
// WEATHER_STORE_PATH.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "WEATHER"

// DefaultConfigName is searched for in the working directory when no
// explicit config file is given (weather-mcp.yaml, weather-mcp.json, ...).
const DefaultConfigName = "weather-mcp"

// Transports accepted by Config.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the full server configuration.
type Config struct {
	API       APIConfig     `mapstructure:"api"`
	Store     StoreConfig   `mapstructure:"store"`
	Log       LogConfig     `mapstructure:"log"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
	Transport string        `mapstructure:"transport"`
	HTTP      HTTPConfig    `mapstructure:"http"`
}

// APIConfig configures the upstream weather API client.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`

	// DetailedErrors appends the failure class to "Unable to fetch" text.
	DetailedErrors bool `mapstructure:"detailed_errors"`
}

// StoreConfig selects the memory backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// HTTPConfig configures the streamable HTTP transport.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

var defaults = map[string]any{
	"api.base_url":        "https://api.weather.gov",
	"api.user_agent":      "weather-app/1.0",
	"api.timeout":         "30s",
	"api.detailed_errors": false,
	"store.backend":       "json",
	"store.path":          "",
	"log.level":           "info",
	"log.format":          "text",
	"metrics.addr":        "",
	"transport":           TransportStdio,
	"http.addr":           ":8080",
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path. When set, it must exist.
	ConfigFile string

	// EnvFile is the dotenv file to load if present. Default: ".env".
	EnvFile string
}

// Load resolves the configuration from all sources and validates it.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg is coherent. It returns all problems joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if cfg.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout))
	}

	switch strings.ToLower(cfg.Store.Backend) {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store.backend must be json or sqlite, got %q", cfg.Store.Backend))
	}

	switch cfg.Transport {
	case TransportStdio:
	case TransportHTTP:
		if cfg.HTTP.Addr == "" {
			errs = append(errs, errors.New("http.addr is required for the http transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("transport must be %s or %s, got %q", TransportStdio, TransportHTTP, cfg.Transport))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
