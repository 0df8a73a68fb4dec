// Package config loads bridge configuration from the environment, with an
// optional YAML file overlay for desktop installs that ship a config file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Relay     RelayConfig
	Bridge    BridgeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8421" yaml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" yaml:"host"`
}

// RelayConfig holds the host relay API configuration. Token may be a sealed
// (base64 secretbox) value; SealKey is the base64 key that opens it. An
// empty SealKey means the token is plaintext.
type RelayConfig struct {
	URL            string `envconfig:"RELAY_URL" default:"http://localhost:3001" yaml:"url"`
	Token          string `envconfig:"RELAY_TOKEN" yaml:"token"`
	SealKey        string `envconfig:"RELAY_SEAL_KEY" yaml:"seal_key"`
	TimeoutSeconds int    `envconfig:"RELAY_TIMEOUT_SECONDS" default:"30" yaml:"timeout_seconds"`
}

// BridgeConfig bounds inbound traffic from a single webview connection.
type BridgeConfig struct {
	MessagesPerSecond int `envconfig:"BRIDGE_MESSAGES_PER_SECOND" default:"20" yaml:"messages_per_second"`
	Burst             int `envconfig:"BRIDGE_BURST" default:"40" yaml:"burst"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds HTTP-level rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads environment configuration and overlays the YAML file at
// path on top of it. File values take precedence over the environment.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
