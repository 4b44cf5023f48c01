// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the revshare configuration file.
//
// The file is a flat list of "key = value" lines. Blank lines and lines
// starting with '#' are ignored, as are unknown keys.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configFileName = "config"
	dbFileName     = "revshare.db"
)

// Config holds the settings for the revshare tool.
type Config struct {
	DataDir          string // Directory holding the database and config file
	LogLevel         string // debug, info, warn or error
	LogFile          string // Empty logs to stderr
	MaxTotal         uint64 // Cap on the table's total weight; 0 disables
	ValidatePointers bool   // Reject names that are not payment pointers
	Owner            string // Only identity allowed to mutate the table; empty disables
}

// DefaultDataDir returns ~/.revshare, or .revshare when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revshare"
	}
	return filepath.Join(home, ".revshare")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
		MaxTotal: 100,
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// DBPath returns the database path inside cfg.DataDir.
func DBPath(cfg Config) string {
	return filepath.Join(cfg.DataDir, dbFileName)
}

// LoadConfig reads the config file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := applyKey(&cfg, key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func applyKey(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	case "maxtotal":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: maxtotal %q", ErrInvalidConfigValue, value)
		}
		cfg.MaxTotal = n
	case "validatepointers":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: validatepointers %q", ErrInvalidConfigValue, value)
		}
		cfg.ValidatePointers = b
	case "owner":
		cfg.Owner = value
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Revshare Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "maxtotal = %d\n", cfg.MaxTotal)
	fmt.Fprintf(&b, "validatepointers = %t\n", cfg.ValidatePointers)
	fmt.Fprintf(&b, "owner = %s\n", cfg.Owner)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
