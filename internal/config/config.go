// Package config handles YAML configuration for the scopewatch tool with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	scerrors "github.com/keenanlab/scopecache/errors"
)

// Config holds all scopewatch configuration.
type Config struct {
	Serve Serve `yaml:"serve"`
	Demo  Demo  `yaml:"demo"`
}

// Serve holds settings for the debug/metrics HTTP server.
type Serve struct {
	Addr string `yaml:"addr"`
}

// Demo holds the simulated workload shape.
type Demo struct {
	Scopes    int           `yaml:"scopes"`     // concurrent simulated scopes
	Keys      int           `yaml:"keys"`       // distinct resource keys
	Hold      time.Duration `yaml:"hold"`       // how long a scope stays attached
	LoadTime  time.Duration `yaml:"load_time"`  // simulated loader latency
	LeakEvery int           `yaml:"leak_every"` // forget every Nth detach; 0 disables
}

// rawDemo mirrors Demo with pointers, so unset fields keep their defaults
// and durations can be written as "150ms" style strings.
type rawDemo struct {
	Scopes    *int    `yaml:"scopes"`
	Keys      *int    `yaml:"keys"`
	Hold      *string `yaml:"hold"`
	LoadTime  *string `yaml:"load_time"`
	LeakEvery *int    `yaml:"leak_every"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Demo) UnmarshalYAML(value *yaml.Node) error {
	var raw rawDemo
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Scopes != nil {
		d.Scopes = *raw.Scopes
	}
	if raw.Keys != nil {
		d.Keys = *raw.Keys
	}
	if raw.LeakEvery != nil {
		d.LeakEvery = *raw.LeakEvery
	}
	if raw.Hold != nil {
		dur, err := time.ParseDuration(*raw.Hold)
		if err != nil {
			return fmt.Errorf("parse demo.hold: %w", err)
		}
		d.Hold = dur
	}
	if raw.LoadTime != nil {
		dur, err := time.ParseDuration(*raw.LoadTime)
		if err != nil {
			return fmt.Errorf("parse demo.load_time: %w", err)
		}
		d.LoadTime = dur
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Serve: Serve{
			Addr: ":9190",
		},
		Demo: Demo{
			Scopes:    8,
			Keys:      4,
			Hold:      400 * time.Millisecond,
			LoadTime:  150 * time.Millisecond,
			LeakEvery: 0,
		},
	}
}

// Load reads the config file at path, layered over defaults. An empty
// path or a missing file yields the defaults. The SCOPEWATCH_ADDR
// environment variable overrides the serve address.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if addr := os.Getenv("SCOPEWATCH_ADDR"); addr != "" {
		cfg.Serve.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the tool cannot run with.
func (c Config) Validate() error {
	if c.Serve.Addr == "" {
		return scerrors.Config("serve.addr must not be empty")
	}
	if c.Demo.Scopes < 1 {
		return scerrors.Config("demo.scopes must be at least 1, got %d", c.Demo.Scopes)
	}
	if c.Demo.Keys < 1 {
		return scerrors.Config("demo.keys must be at least 1, got %d", c.Demo.Keys)
	}
	if c.Demo.Hold <= 0 {
		return scerrors.Config("demo.hold must be positive, got %s", c.Demo.Hold)
	}
	if c.Demo.LoadTime < 0 {
		return scerrors.Config("demo.load_time must not be negative, got %s", c.Demo.LoadTime)
	}
	if c.Demo.LeakEvery < 0 {
		return scerrors.Config("demo.leak_every must not be negative, got %d", c.Demo.LeakEvery)
	}
	return nil
}
