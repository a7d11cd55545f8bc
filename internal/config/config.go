// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete daemon configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Policy    PolicyConfig    `yaml:"policy"`
	Registry  RegistryConfig  `yaml:"registry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Timeouts in seconds; zero selects the defaults.
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
	IdleTimeout  int `yaml:"idle_timeout"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info
}

// PolicyConfig locates the access policy document and names the trusted
// broker service package
type PolicyConfig struct {
	// Path is the well-known filesystem location of the policy document.
	Path string `yaml:"path"`

	// BrokerPackage names the single trusted service package allowed to
	// request access on behalf of a package it does not own. Empty disables
	// the broker fallback.
	BrokerPackage string `yaml:"broker_package"`
}

// RegistryConfig locates the static package registry manifest
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls Prometheus metrics
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RateLimitConfig controls rate limiting on the REST API
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// Default configuration values.
const (
	DefaultPort         = 8450
	DefaultPolicyPath   = "/etc/seaccess/access.xml"
	DefaultRegistryPath = "/etc/seaccess/registry.yaml"
	DefaultReadTimeout  = 15
	DefaultWriteTimeout = 15
	DefaultIdleTimeout  = 60
)

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Policy: PolicyConfig{
			Path: DefaultPolicyPath,
		},
		Registry: RegistryConfig{
			Path: DefaultRegistryPath,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML configuration at path, applies defaults for omitted
// values, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values that yaml.Unmarshal may have cleared.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Policy.Path == "" {
		c.Policy.Path = DefaultPolicyPath
	}
	if c.Registry.Path == "" {
		c.Registry.Path = DefaultRegistryPath
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info":
	default:
		return fmt.Errorf("config: invalid logging level %q (allowed: debug, info)", c.Logging.Level)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("config: ratelimit enabled but requests_per_minute is %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

// DebugLogging reports whether debug level logging is configured.
func (c *Config) DebugLogging() bool {
	return c.Logging.Level == "debug"
}
