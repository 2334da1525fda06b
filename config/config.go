package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// IndicatorSpec names one indicator to run and its options.
type IndicatorSpec struct {
	Symbol  string         `yaml:"symbol"`
	Options map[string]any `yaml:"options"`
}

// Config holds all configuration of a batch run: an optional YAML file,
// overridden by environment variables, overridden by CLI flags in main.
type Config struct {
	Instrument string `yaml:"instrument"`

	Source struct {
		Kind string `yaml:"kind"` // sqlite | csv | parquet
		Path string `yaml:"path"` // file path for csv/parquet
		From string `yaml:"from"` // RFC3339 or 2006-01-02, empty = open
		To   string `yaml:"to"`
	} `yaml:"source"`

	// Infrastructure
	SQLitePath     string `yaml:"sqlite_path"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	LogLevel       string `yaml:"log_level"`

	Indicators []IndicatorSpec `yaml:"indicators"`
	Sinks      []string        `yaml:"sinks"`    // stdout, sqlite, redis, csv, parquet
	OutPath    string          `yaml:"out_path"` // base path for file sinks, extension added per sink
}

// Load reads config from a YAML file (a missing file is not an error), then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	cfg.Instrument = getEnv("TA_INSTRUMENT", cfg.Instrument)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.PushgatewayURL = getEnv("PUSHGATEWAY_URL", cfg.PushgatewayURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("[config] skipping invalid REDIS_DB value: %q", v)
		} else {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("TA_INDICATORS"); v != "" {
		specs, err := ParseIndicatorSpecs(v)
		if err != nil {
			return nil, fmt.Errorf("TA_INDICATORS: %w", err)
		}
		cfg.Indicators = specs
	}
	if v := os.Getenv("TA_SINKS"); v != "" {
		cfg.Sinks = ParseList(v)
	}

	// Defaults
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "sqlite"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "data/bars.db"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutPath == "" {
		cfg.OutPath = "data/results"
	}
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []string{"stdout"}
	}
	if len(cfg.Indicators) == 0 {
		cfg.Indicators = DefaultIndicators()
	}

	return cfg, nil
}

// DefaultIndicators runs every indicator with its default options.
func DefaultIndicators() []IndicatorSpec {
	return []IndicatorSpec{
		{Symbol: "dlr", Options: map[string]any{"price_key": "close"}},
		{Symbol: "obv"},
		{Symbol: "mi"},
	}
}

// ParseIndicatorSpecs parses "SYMBOL[:key=value...],..." into specs.
// Example: "mi:ema_period=9:sum_period=25,obv,dlr:price_key=close".
// Option values stay strings; indicators coerce them.
func ParseIndicatorSpecs(s string) ([]IndicatorSpec, error) {
	var specs []IndicatorSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens := strings.Split(part, ":")
		spec := IndicatorSpec{Symbol: strings.ToLower(strings.TrimSpace(tokens[0]))}
		if spec.Symbol == "" {
			return nil, fmt.Errorf("empty indicator symbol in %q", part)
		}
		for _, kv := range tokens[1:] {
			k, v, ok := strings.Cut(kv, "=")
			k = strings.TrimSpace(k)
			if !ok || k == "" {
				return nil, fmt.Errorf("invalid option %q for %s: want key=value", kv, spec.Symbol)
			}
			if spec.Options == nil {
				spec.Options = make(map[string]any)
			}
			spec.Options[k] = strings.TrimSpace(v)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no indicators in %q", s)
	}
	return specs, nil
}

// ParseList splits a comma-separated list, trimming and lowercasing entries.
func ParseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
