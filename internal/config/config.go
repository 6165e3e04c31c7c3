package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the devsift server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Source  SourceConfig  `yaml:"source"`
	Search  SearchConfig  `yaml:"search"`
	Engine  EngineConfig  `yaml:"engine"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json or console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SourceConfig holds load source settings.
type SourceConfig struct {
	URL          string      `yaml:"url"` // loaded at startup when set
	TimeoutSec   int         `yaml:"timeout_sec"`
	Watch        bool        `yaml:"watch"` // reload file sources on change
	DebounceMs   int         `yaml:"debounce_ms"`
	Redis        RedisConfig `yaml:"redis"`
	MaxBodyBytes int64       `yaml:"max_body_bytes"`

	// AllowedLocators lists the locator prefixes POST /v1/load accepts.
	// Defaults to URL.
	AllowedLocators []string `yaml:"allowed_locators"`
}

// RedisConfig enables redis:// locators when Addrs is set.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds text search settings.
type SearchConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	MaxQueryLength int     `yaml:"max_query_length"`
}

// EngineConfig holds query engine settings.
type EngineConfig struct {
	QueryCacheSize int `yaml:"query_cache_size"` // 0 disables the result cache
	QueueSize      int `yaml:"queue_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 30
	}
	if c.Source.DebounceMs <= 0 {
		c.Source.DebounceMs = 500
	}
	if c.Source.MaxBodyBytes <= 0 {
		c.Source.MaxBodyBytes = 256 << 20
	}
	// an unset ${REDIS_ADDR} expands to an empty entry
	c.Source.Redis.Addrs = slices.DeleteFunc(c.Source.Redis.Addrs, func(a string) bool {
		return strings.TrimSpace(a) == ""
	})
	c.Source.AllowedLocators = slices.DeleteFunc(c.Source.AllowedLocators, func(l string) bool {
		return strings.TrimSpace(l) == ""
	})
	if len(c.Source.AllowedLocators) == 0 && c.Source.URL != "" {
		c.Source.AllowedLocators = []string{c.Source.URL}
	}
	if c.Source.Redis.ReadinessTimeout <= 0 {
		c.Source.Redis.ReadinessTimeout = 10
	}
	if c.Search.FuzzyThreshold <= 0 {
		c.Search.FuzzyThreshold = 0.3
	}
	if c.Search.MaxQueryLength <= 0 {
		c.Search.MaxQueryLength = 256
	}
	if c.Engine.QueueSize <= 0 {
		c.Engine.QueueSize = 64
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("search.fuzzy_threshold must be between 0 and 1, got %g", c.Search.FuzzyThreshold)
	}
	if c.Search.MaxQueryLength > 4096 {
		return fmt.Errorf("search.max_query_length must be at most 4096, got %d", c.Search.MaxQueryLength)
	}
	if c.Engine.QueryCacheSize < 0 {
		return fmt.Errorf("engine.query_cache_size must not be negative, got %d", c.Engine.QueryCacheSize)
	}
	if c.Source.Watch && c.Source.URL == "" {
		return fmt.Errorf("source.watch requires source.url")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
