// Package config provides error definitions for configuration management
package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidAgentName      = errors.New("invalid agent name")
	ErrInvalidEnvironment    = errors.New("invalid environment")
	ErrInvalidLogLevel       = errors.New("invalid log level")
	ErrInvalidLogFormat      = errors.New("invalid log format")
	ErrInvalidMailboxSize    = errors.New("invalid mailbox size")
	ErrInvalidShutdownGrace  = errors.New("invalid shutdown grace period")
	ErrInvalidMetricsAddress = errors.New("invalid metrics address")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound  = errors.New("configuration file not found")
	ErrConfigParseError    = errors.New("configuration parse error")
	ErrConfigValidateError = errors.New("configuration validation error")
	ErrConfigWatchError    = errors.New("configuration watch error")
)
