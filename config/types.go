// Package config provides configuration management for the edgekit agent
package config

import (
	"log/slog"
	"time"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// SlogLevel converts the level to its log/slog equivalent
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config represents the complete edgekit agent configuration
type Config struct {
	// Agent configuration
	Agent AgentConfig `yaml:"agent" json:"agent"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Actor runtime configuration
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`

	// Monitoring configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Custom configurations (for user-defined actors)
	Custom map[string]interface{} `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// AgentConfig contains agent-level configuration
type AgentConfig struct {
	// Agent name
	Name string `yaml:"name" json:"name"`

	// Agent version
	Version string `yaml:"version" json:"version"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`

	// Debug mode
	Debug bool `yaml:"debug" json:"debug"`

	// Agent metadata
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level
	Level LogLevel `yaml:"level" json:"level"`

	// Log format (json, text)
	Format string `yaml:"format" json:"format"`
}

// RuntimeConfig contains actor runtime configuration
type RuntimeConfig struct {
	// Default mailbox capacity for actors that do not set one
	MailboxSize int `yaml:"mailbox_size" json:"mailbox_size"`

	// How long the runtime waits for actors to drain after a shutdown
	// broadcast before canceling their contexts
	ShutdownGrace time.Duration `yaml:"shutdown_grace" json:"shutdown_grace"`

	// How often mailbox depths are sampled into metrics
	SampleInterval time.Duration `yaml:"sample_interval" json:"sample_interval"`
}

// MetricsConfig contains monitoring configuration
type MetricsConfig struct {
	// Enable metrics collection
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address for the metrics endpoint
	Address string `yaml:"address" json:"address"`
}

// DefaultConfig returns the default agent configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:        "edgekit",
			Version:     "0.1.0",
			Environment: EnvDevelopment,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "text",
		},
		Runtime: RuntimeConfig{
			MailboxSize:    256,
			ShutdownGrace:  10 * time.Second,
			SampleInterval: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9464",
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Agent.Name == "" {
		return ErrInvalidAgentName
	}
	if !c.Agent.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}
	if c.Runtime.MailboxSize <= 0 {
		return ErrInvalidMailboxSize
	}
	if c.Runtime.ShutdownGrace <= 0 {
		return ErrInvalidShutdownGrace
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return ErrInvalidMetricsAddress
	}
	return nil
}
