package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	SerpAPI   SerpAPIConfig   `koanf:"serpapi"`
	Sentiment SentimentConfig `koanf:"sentiment"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// SerpAPIConfig holds the upstream reviews API settings. The key and
// place ID are required: the service has no local data source, every
// request goes through the upstream API.
type SerpAPIConfig struct {
	BaseURL     string `koanf:"base_url"`
	Engine      string `koanf:"engine"`
	APIKey      string `koanf:"api_key"`
	PlaceID     string `koanf:"place_id"`
	Timeout     string `koanf:"timeout"` // parsed and validated on startup
	MaxPageSize int    `koanf:"max_page_size"`
}

type SentimentConfig struct {
	// LexiconDir optionally overrides the built-in sentiment lexicon
	// with *.yaml files from this directory. Empty means built-in only.
	LexiconDir string `koanf:"lexicon_dir"`
}

// EffectiveTimeout parses the configured upstream timeout. Callers must
// validate the config first; this falls back to 30s on a bad value.
func (c SerpAPIConfig) EffectiveTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.SerpAPI.BaseURL) == "" {
		return fmt.Errorf("serpapi.base_url is required")
	}
	if strings.TrimSpace(c.SerpAPI.Engine) == "" {
		return fmt.Errorf("serpapi.engine is required")
	}
	if strings.TrimSpace(c.SerpAPI.APIKey) == "" {
		return fmt.Errorf("serpapi.api_key is required")
	}
	if strings.TrimSpace(c.SerpAPI.PlaceID) == "" {
		return fmt.Errorf("serpapi.place_id is required")
	}
	if c.SerpAPI.MaxPageSize <= 0 || c.SerpAPI.MaxPageSize > 1000 {
		return fmt.Errorf("serpapi.max_page_size must be 1-1000")
	}
	timeout, err := time.ParseDuration(c.SerpAPI.Timeout)
	if err != nil {
		return fmt.Errorf("invalid serpapi.timeout %q: %w", c.SerpAPI.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("serpapi.timeout must be > 0")
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":           8080,
		"server.host":           "0.0.0.0",
		"server.mode":           "release",
		"serpapi.base_url":      "https://serpapi.com/search.json",
		"serpapi.engine":        "open_table_reviews",
		"serpapi.api_key":       "",
		"serpapi.place_id":      "",
		"serpapi.timeout":       "30s",
		"serpapi.max_page_size": 1000,
		"sentiment.lexicon_dir": "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("TABLESCOPE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TABLESCOPE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
