package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories

	// RootPath, WorkingDirectory and IncludePaths configure include path
	// resolution for every session the app creates.
	RootPath         string
	WorkingDirectory string
	IncludePaths     []string

	LogFormat   string
	LogLevel    string
	WorkerCount int
	Runs        int
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !validLogLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !validLogFormats[cfg.LogFormat] {
		return nil, fmt.Errorf("invalid log format %q: must be text or json", cfg.LogFormat)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	if cfg.Runs < 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", cfg.Runs)
	}
	if cfg.Runs == 0 {
		cfg.Runs = 1
	}

	return &cfg, nil
}
