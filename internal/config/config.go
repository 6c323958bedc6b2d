// Package config reads the process-level settings. Data sources, the
// indicator and the year are compiled in and never configurable.
package config

import (
	"os"
	"strconv"
)

const (
	DefaultPort     = "9595"
	DefaultLogLevel = "info"
)

type Config struct {
	Port     string
	LogLevel string
}

// FromEnv reads PORT and LOG_LEVEL, falling back to defaults.
func FromEnv() Config {
	cfg := Config{
		Port:     os.Getenv("PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		cfg.Port = DefaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

func (c Config) Addr() string {
	return ":" + c.Port
}
