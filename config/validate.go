// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"strings"

	"github.com/rs/zerolog"
)

// validLogLevels maps the accepted log level strings to zerolog levels.
var validLogLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}

	return nil
}

// Level returns the zerolog level for cfg.LogLevel.
func Level(cfg Config) (zerolog.Level, error) {
	lvl, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]
	if !ok {
		return zerolog.NoLevel, ErrInvalidLogLevel
	}
	return lvl, nil
}
