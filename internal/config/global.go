// Package config loads modsync's user-level settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds global settings from ~/.modsync/config.yaml.
type GlobalConfig struct {
	Resolve  ResolveConfig  `yaml:"resolve"`
	Platform PlatformConfig `yaml:"platform"`
	Debug    DebugConfig    `yaml:"debug"`
	History  HistoryConfig  `yaml:"history"`
}

// ResolveConfig controls how dependency listings are queried.
type ResolveConfig struct {
	// TrialDelay separates successive listing queries for one dependency.
	TrialDelay time.Duration `yaml:"trial_delay"`
	// HTTPTimeout bounds each upstream request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// Parallelism caps how many dependencies resolve at once.
	Parallelism int `yaml:"parallelism"`
}

// PlatformConfig locates the platform version catalog.
type PlatformConfig struct {
	ManifestURL string `yaml:"manifest_url"`
}

// DebugConfig controls the debug log files under ~/.modsync/debug.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// HistoryConfig controls the local record of applied updates.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultGlobalConfig returns the default global configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Resolve: ResolveConfig{
			TrialDelay:  time.Second,
			HTTPTimeout: 30 * time.Second,
			Parallelism: 4,
		},
		Platform: PlatformConfig{
			ManifestURL: "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json",
		},
		Debug:   DebugConfig{RetentionDays: 14},
		History: HistoryConfig{Enabled: true},
	}
}

// LoadGlobal reads ~/.modsync/config.yaml and applies environment overrides.
// A missing file yields the defaults; a malformed one is an error.
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	path := filepath.Join(GlobalConfigDir(), "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.Resolve.Parallelism < 1 {
		cfg.Resolve.Parallelism = 1
	}
	return cfg, nil
}

func applyEnv(cfg *GlobalConfig) error {
	if v := os.Getenv("MODSYNC_TRIAL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MODSYNC_TRIAL_DELAY: %w", err)
		}
		cfg.Resolve.TrialDelay = d
	}
	if v := os.Getenv("MODSYNC_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MODSYNC_HTTP_TIMEOUT: %w", err)
		}
		cfg.Resolve.HTTPTimeout = d
	}
	if v := os.Getenv("MODSYNC_PARALLELISM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MODSYNC_PARALLELISM: %w", err)
		}
		cfg.Resolve.Parallelism = n
	}
	if v := os.Getenv("MODSYNC_MANIFEST_URL"); v != "" {
		cfg.Platform.ManifestURL = v
	}
	if v := os.Getenv("MODSYNC_DEBUG_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MODSYNC_DEBUG_RETENTION_DAYS: %w", err)
		}
		cfg.Debug.RetentionDays = n
	}
	if v := os.Getenv("MODSYNC_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MODSYNC_HISTORY: %w", err)
		}
		cfg.History.Enabled = b
	}
	return nil
}

// GlobalConfigDir returns the path to ~/.modsync.
func GlobalConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".modsync")
	}
	return filepath.Join(homeDir, ".modsync")
}

// DebugDir returns the directory debug log files are written to.
func DebugDir() string {
	return filepath.Join(GlobalConfigDir(), "debug")
}

// HistoryPath returns the location of the update history database.
func HistoryPath() string {
	return filepath.Join(GlobalConfigDir(), "history.db")
}
