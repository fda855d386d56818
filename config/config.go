// Package config loads the scheduler service configuration from JSON or
// YAML files with optional environment overrides.
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

	"github.com/kilianp07/microgrid/core/metrics"
	"github.com/kilianp07/microgrid/infra/mqtt"
)

// Config is the root service configuration.
type Config struct {
	MicrogridID string          `json:"microgrid_id"`
	System      SystemConfig    `json:"system"`
	Devices     []DeviceConfig  `json:"devices"`
	Scheduler   SchedulerConfig `json:"scheduler"`
	Store       StoreConfig     `json:"store"`
	API         APIConfig       `json:"api"`
	Metrics     metrics.Config  `json:"metrics"`
	MQTT        mqtt.Config     `json:"mqtt"`
}

// Load reads the configuration file at path. Environment variables with the
// MG_ prefix override file values, using __ as the key separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
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
	if err := k.Load(env.Provider("MG_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults to every section.
func (c *Config) SetDefaults() {
	if c.MicrogridID == "" {
		c.MicrogridID = "default"
	}
	c.Scheduler.SetDefaults()
	c.Store.SetDefaults()
	c.MQTT.SetDefaults()
	if c.Metrics.PrometheusPort == "" {
		c.Metrics.PrometheusPort = ":9090"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.System.ToModel(); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	if _, err := c.DeviceList(); err != nil {
		return fmt.Errorf("devices: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return c.Store.Validate()
}
