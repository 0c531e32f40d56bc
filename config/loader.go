// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"/etc/edgekit",
			os.Getenv("HOME") + "/.edgekit",
		},
		envPrefix:     "EDGEKIT",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the default configuration
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// LoadFromFile loads configuration from a specific file, merging it over
// the defaults and applying environment overrides
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	format, err := formatForFile(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	return l.finalize(config)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	return l.finalize(config)
}

// AutoLoad automatically discovers and loads configuration. When no
// config file is found, the defaults plus environment overrides are used.
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, _, err := l.findConfigFile()
	if err != nil {
		if err == ErrConfigFileNotFound {
			return l.finalize(&Config{})
		}
		return nil, err
	}

	return l.LoadFromFile(configFile)
}

// finalize merges the parsed config over the defaults, applies
// environment variable overrides, and validates the result
func (l *Loader) finalize(config *Config) (*Config, error) {
	defaults := l.defaultConfig
	if defaults == nil {
		defaults = DefaultConfig()
	}
	config = l.mergeConfig(defaults, config)

	l.loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidateError, err)
	}

	return config, nil
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, ConfigFormat, error) {
	filenames := []string{
		"edgekit.yaml", "edgekit.yml",
		"config.yaml", "config.yml",
		"edgekit.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err == nil {
				format, err := formatForFile(filename)
				if err != nil {
					continue
				}
				return fullPath, format, nil
			}
		}
	}

	return "", "", ErrConfigFileNotFound
}

// formatForFile determines the configuration format from a file extension
func formatForFile(filename string) (ConfigFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file format: %s", filepath.Ext(filename))
	}
}

// parseConfig parses configuration data based on format
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := &Config{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigParseError, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigParseError, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return config, nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) {
	if val := os.Getenv(l.envPrefix + "_AGENT_NAME"); val != "" {
		config.Agent.Name = val
	}
	if val := os.Getenv(l.envPrefix + "_AGENT_VERSION"); val != "" {
		config.Agent.Version = val
	}
	if val := os.Getenv(l.envPrefix + "_AGENT_ENVIRONMENT"); val != "" {
		config.Agent.Environment = Environment(val)
	}
	if val := os.Getenv(l.envPrefix + "_AGENT_DEBUG"); val != "" {
		config.Agent.Debug = strings.ToLower(val) == "true"
	}

	if val := os.Getenv(l.envPrefix + "_LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(val)
	}
	if val := os.Getenv(l.envPrefix + "_LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}

	if val := os.Getenv(l.envPrefix + "_RUNTIME_MAILBOX_SIZE"); val != "" {
		if size, err := parsePositiveInt(val); err == nil {
			config.Runtime.MailboxSize = size
		}
	}
	if val := os.Getenv(l.envPrefix + "_RUNTIME_SHUTDOWN_GRACE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Runtime.ShutdownGrace = d
		}
	}

	if val := os.Getenv(l.envPrefix + "_METRICS_ENABLED"); val != "" {
		config.Metrics.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_ADDRESS"); val != "" {
		config.Metrics.Address = val
	}
}

// parsePositiveInt parses a positive integer value
func parsePositiveInt(val string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", n)
	}
	return n, nil
}

// mergeConfig merges user config with default config
func (l *Loader) mergeConfig(defaultConfig, userConfig *Config) *Config {
	merged := *defaultConfig

	if userConfig.Agent.Name != "" {
		merged.Agent.Name = userConfig.Agent.Name
	}
	if userConfig.Agent.Version != "" {
		merged.Agent.Version = userConfig.Agent.Version
	}
	if userConfig.Agent.Environment != "" {
		merged.Agent.Environment = userConfig.Agent.Environment
	}
	merged.Agent.Debug = userConfig.Agent.Debug
	if userConfig.Agent.Metadata != nil {
		merged.Agent.Metadata = userConfig.Agent.Metadata
	}

	if userConfig.Log.Level != "" {
		merged.Log.Level = userConfig.Log.Level
	}
	if userConfig.Log.Format != "" {
		merged.Log.Format = userConfig.Log.Format
	}

	if userConfig.Runtime.MailboxSize != 0 {
		merged.Runtime.MailboxSize = userConfig.Runtime.MailboxSize
	}
	if userConfig.Runtime.ShutdownGrace != 0 {
		merged.Runtime.ShutdownGrace = userConfig.Runtime.ShutdownGrace
	}
	if userConfig.Runtime.SampleInterval != 0 {
		merged.Runtime.SampleInterval = userConfig.Runtime.SampleInterval
	}

	merged.Metrics.Enabled = userConfig.Metrics.Enabled
	if userConfig.Metrics.Address != "" {
		merged.Metrics.Address = userConfig.Metrics.Address
	}

	if userConfig.Custom != nil {
		merged.Custom = userConfig.Custom
	}

	return &merged
}
