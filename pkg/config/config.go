// Package config holds the immutable runtime configuration shared by the
// client, the usage prober, and the batch engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by Load.
const (
	EnvAPIKey  = "SCRAPINGBEE_API_KEY"
	EnvBaseURL = "SCRAPINGBEE_BASE_URL"
	EnvConfig  = "SCRAPINGBEE_CONFIG"
)

// Defaults.
const (
	DefaultBaseURL   = "https://app.scrapingbee.com/api/v1"
	DefaultTimeout   = 150 * time.Second
	DefaultUserAgent = "scrapingbee-cli/0.1.0"
	DefaultLogLevel  = "warn"
)

// ErrMissingAPIKey is returned by Validate when no API key was resolved.
var ErrMissingAPIKey = errors.New("API key not provided. Use --api-key flag or set " + EnvAPIKey + " environment variable")

// Config is the resolved CLI configuration. It is passed by value; nothing
// in the repository mutates it after the CLI has finished resolving flags.
type Config struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`

	Log   LogConfig   `yaml:"log"`
	Cache CacheConfig `yaml:"cache"`

	// MetricsFile, when set, receives a Prometheus text dump after each command.
	MetricsFile string `yaml:"metrics_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// CacheConfig configures the single-request response cache.
// The cache is disabled unless both RedisAddr and TTL are set.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Enabled reports whether the response cache should be used.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != "" && c.TTL > 0
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultPath returns the default config file location
// (<user config dir>/scrapingbee/config.yaml).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scrapingbee", "config.yaml")
}

// Load resolves configuration with precedence defaults → YAML file → environment.
// An empty path means $SCRAPINGBEE_CONFIG or DefaultPath; a missing file at the
// default location is ignored, a missing file that was asked for explicitly is an error.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, ok := lookupEnv(EnvConfig); ok && p != "" {
			path, explicit = p, true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		fileCfg, err := readFile(path)
		switch {
		case err == nil:
			cfg = merge(cfg, fileCfg)
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, err
		}
	}

	if v, ok := lookupEnv(EnvAPIKey); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := lookupEnv(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}

	return cfg, nil
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays the non-zero fields of override onto base.
func merge(base, override Config) Config {
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.UserAgent != "" {
		base.UserAgent = override.UserAgent
	}
	if override.Log.Level != "" {
		base.Log.Level = override.Log.Level
	}
	if override.Log.Pretty {
		base.Log.Pretty = true
	}
	if override.Cache.RedisAddr != "" {
		base.Cache.RedisAddr = override.Cache.RedisAddr
	}
	if override.Cache.RedisPassword != "" {
		base.Cache.RedisPassword = override.Cache.RedisPassword
	}
	if override.Cache.RedisDB != 0 {
		base.Cache.RedisDB = override.Cache.RedisDB
	}
	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}
	if override.MetricsFile != "" {
		base.MetricsFile = override.MetricsFile
	}
	return base
}

// Validate checks that the configuration can be used to talk to the API.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", c.Timeout)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must be >= 0 (got %s)", c.Cache.TTL)
	}
	return nil
}

// Endpoint joins the base URL and an API path.
func (c Config) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
