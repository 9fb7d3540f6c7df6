// Package config loads service settings from .env, an optional YAML file
// and the environment, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/alex-user-go/hotelsearch/internal/amadeus"
)

// Provider endpoints per environment.
const (
	ProductionBaseURL = "https://api.amadeus.com"
	TestBaseURL       = "https://test.api.amadeus.com"
)

// EnvProduction selects the production provider endpoint and credentials.
const EnvProduction = "production"

// Config is the root service configuration.
type Config struct {
	Env      string          `yaml:"env" env:"NODE_ENV,APP_ENV" env-default:"test"`
	LogLevel string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTPConfig      `yaml:"http"`
	Amadeus  AmadeusConfig   `yaml:"amadeus"`
	Search   SearchConfig    `yaml:"search"`
	Limits   RateLimitConfig `yaml:"rate_limit"`
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AmadeusConfig holds provider endpoint and both credential pairs.
type AmadeusConfig struct {
	BaseURL       string        `yaml:"base_url" env:"AMADEUS_BASE_URL"`
	APIKey        string        `yaml:"api_key" env:"AMADEUS_API_KEY"`
	APISecret     string        `yaml:"api_secret" env:"AMADEUS_API_SECRET"`
	ProdAPIKey    string        `yaml:"prod_api_key" env:"AMADEUS_PROD_API_KEY"`
	ProdAPISecret string        `yaml:"prod_api_secret" env:"AMADEUS_PROD_API_SECRET"`
	Timeout       time.Duration `yaml:"timeout" env:"AMADEUS_TIMEOUT" env-default:"15s"`
}

// SearchConfig tunes provider queries.
type SearchConfig struct {
	ForwardRadius   bool   `yaml:"forward_radius" env:"SEARCH_FORWARD_RADIUS" env-default:"false"`
	DefaultCityCode string `yaml:"default_city_code" env:"SEARCH_DEFAULT_CITY_CODE" env-default:"AMS"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"60"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// Load reads configuration. A .env file in the working directory is loaded
// first without overriding variables already set. Then the YAML file at path
// (or CONFIG_PATH) is read if given, and environment variables are applied
// on top.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the production provider is selected.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), EnvProduction)
}

// AmadeusEndpoint returns the provider base URL: the explicit override,
// else the production or test host.
func (c *Config) AmadeusEndpoint() string {
	if u := strings.TrimSpace(c.Amadeus.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if c.IsProduction() {
		return ProductionBaseURL
	}
	return TestBaseURL
}

// AmadeusCredentials returns the credential pair for the current environment.
func (c *Config) AmadeusCredentials() amadeus.Credentials {
	if c.IsProduction() {
		return amadeus.Credentials{ClientID: c.Amadeus.ProdAPIKey, ClientSecret: c.Amadeus.ProdAPISecret}
	}
	return amadeus.Credentials{ClientID: c.Amadeus.APIKey, ClientSecret: c.Amadeus.APISecret}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) validate() error {
	creds := c.AmadeusCredentials()
	if creds.ClientID == "" || creds.ClientSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("AMADEUS_PROD_API_KEY and AMADEUS_PROD_API_SECRET are required in production")
		}
		return fmt.Errorf("AMADEUS_API_KEY and AMADEUS_API_SECRET are required")
	}
	if c.Amadeus.Timeout <= 0 {
		return fmt.Errorf("amadeus.timeout must be > 0")
	}
	if c.Limits.Requests <= 0 {
		return fmt.Errorf("rate_limit.requests must be > 0")
	}
	if c.Limits.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be > 0")
	}
	if len(strings.TrimSpace(c.Search.DefaultCityCode)) != 3 {
		return fmt.Errorf("search.default_city_code must be a 3-letter code")
	}
	return nil
}
