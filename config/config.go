package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wrenchworks/dispatch/core/attendance"
	"github.com/wrenchworks/dispatch/core/balance"
	"github.com/wrenchworks/dispatch/core/matching"
	"github.com/wrenchworks/dispatch/core/metrics"
	"github.com/wrenchworks/dispatch/infra/mqtt"
)

// StoreConfig selects the attendance persistence backend.
type StoreConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `json:"backend"`
	// Path is the SQLite database file. Ignored for the memory backend.
	Path string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.Path == "" {
		c.Path = "dispatch.db"
	}
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case "sqlite", "memory":
		return nil
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Backend)
	}
}

type Config struct {
	Attendance attendance.Config `json:"attendance"`
	Matching   matching.Config   `json:"matching"`
	Balance    balance.Config    `json:"balance"`
	Metrics    metrics.Config    `json:"metrics"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Store      StoreConfig       `json:"store"`
}

// Load reads the config file at path (.yaml/.yml/.json) and applies
// TD_-prefixed environment overrides (TD_STORE__BACKEND=memory maps to
// store.backend).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "td_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section at its defaults and the
// in-memory store selected. Used by the CLI demo commands.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Store.Backend = "memory"
	return cfg
}

func (c *Config) ApplyDefaults() {
	c.Attendance.SetDefaults()
	c.Matching.SetDefaults()
	c.Balance.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.Store.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.Attendance.Validate(); err != nil {
		return fmt.Errorf("attendance: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
