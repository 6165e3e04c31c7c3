package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"threshold above one", func(c *Config) { c.Search.FuzzyThreshold = 1.5 }, "search.fuzzy_threshold"},
		{"query length too large", func(c *Config) { c.Search.MaxQueryLength = 10000 }, "search.max_query_length"},
		{"negative cache", func(c *Config) { c.Engine.QueryCacheSize = -1 }, "engine.query_cache_size"},
		{"watch without url", func(c *Config) { c.Source.Watch = true }, "source.watch"},
		{"watch with url", func(c *Config) { c.Source.Watch = true; c.Source.URL = "devices.json" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Source.TimeoutSec != 30 {
		t.Errorf("expected Source.TimeoutSec=30, got %d", cfg.Source.TimeoutSec)
	}
	if cfg.Source.DebounceMs != 500 {
		t.Errorf("expected DebounceMs=500, got %d", cfg.Source.DebounceMs)
	}
	if cfg.Search.FuzzyThreshold != 0.3 {
		t.Errorf("expected FuzzyThreshold=0.3, got %g", cfg.Search.FuzzyThreshold)
	}
	if cfg.Search.MaxQueryLength != 256 {
		t.Errorf("expected MaxQueryLength=256, got %d", cfg.Search.MaxQueryLength)
	}
	if cfg.Engine.QueueSize != 64 {
		t.Errorf("expected QueueSize=64, got %d", cfg.Engine.QueueSize)
	}
	if cfg.Engine.QueryCacheSize != 0 {
		t.Errorf("expected result cache disabled by default, got %d", cfg.Engine.QueryCacheSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Source: SourceConfig{TimeoutSec: 5, DebounceMs: 100},
		Search: SearchConfig{FuzzyThreshold: 0.1, MaxQueryLength: 64},
		Engine: EngineConfig{QueryCacheSize: 128, QueueSize: 8},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Source.TimeoutSec != 5 || cfg.Source.DebounceMs != 100 {
		t.Errorf("source overridden: %+v", cfg.Source)
	}
	if cfg.Search.FuzzyThreshold != 0.1 || cfg.Search.MaxQueryLength != 64 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
	if cfg.Engine.QueryCacheSize != 128 || cfg.Engine.QueueSize != 8 {
		t.Errorf("engine overridden: %+v", cfg.Engine)
	}
}

func TestApplyDefaults_DropsBlankRedisAddrs(t *testing.T) {
	cfg := Config{}
	cfg.Source.Redis.Addrs = []string{"", "redis:6379", " "}
	cfg.ApplyDefaults()

	if len(cfg.Source.Redis.Addrs) != 1 || cfg.Source.Redis.Addrs[0] != "redis:6379" {
		t.Errorf("expected only redis:6379, got %q", cfg.Source.Redis.Addrs)
	}
}

func TestApplyDefaults_AllowedLocators(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		allowed []string
		want    []string
	}{
		{"defaults to source url", "https://cdn.example.com/devices.json", nil, []string{"https://cdn.example.com/devices.json"}},
		{"blank entries fall back to source url", "./devices.json", []string{"", " "}, []string{"./devices.json"}},
		{"explicit list kept", "./devices.json", []string{"/data/"}, []string{"/data/"}},
		{"nothing configured", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.Source.URL = tt.url
			cfg.Source.AllowedLocators = tt.allowed
			cfg.ApplyDefaults()
			if !slices.Equal(cfg.Source.AllowedLocators, tt.want) {
				t.Errorf("AllowedLocators = %q, want %q", cfg.Source.AllowedLocators, tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DEVSIFT_TEST_URL", "https://example.com/devices.json")

	out := string(expandEnvVars([]byte("url: ${DEVSIFT_TEST_URL}\nlevel: ${DEVSIFT_TEST_UNSET:-debug}\nempty: ${DEVSIFT_TEST_UNSET}")))

	if !strings.Contains(out, "url: https://example.com/devices.json") {
		t.Errorf("variable not expanded: %q", out)
	}
	if !strings.Contains(out, "level: debug") {
		t.Errorf("default not applied: %q", out)
	}
	if !strings.Contains(out, "empty: \n") && !strings.HasSuffix(out, "empty: ") {
		t.Errorf("unset variable should expand to empty: %q", out)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `http:
  port: ${DEVSIFT_TEST_PORT:-9090}
source:
  url: ./devices.json
  watch: true
  redis:
    addrs: ["localhost:6379"]
search:
  fuzzy_threshold: 0.25
engine:
  query_cache_size: 32
auth:
  api_keys: ["k1"]
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Source.URL != "./devices.json" || !cfg.Source.Watch {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if len(cfg.Source.Redis.Addrs) != 1 {
		t.Errorf("Redis.Addrs = %v", cfg.Source.Redis.Addrs)
	}
	if cfg.Search.FuzzyThreshold != 0.25 || cfg.Engine.QueryCacheSize != 32 {
		t.Errorf("Search = %+v, Engine = %+v", cfg.Search, cfg.Engine)
	}
	if cfg.Search.MaxQueryLength != 256 {
		t.Errorf("defaults not applied: MaxQueryLength = %d", cfg.Search.MaxQueryLength)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "k1" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
