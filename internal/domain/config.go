package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds podcheck configuration loaded from .podcheck.yaml.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker" json:"tracker"`
	Sync    SyncConfig    `yaml:"sync"    json:"sync"`
}

// TrackerConfig drives the experiment-tracker integration check.
type TrackerConfig struct {
	APIKeyEnv string        `yaml:"api_key_env" json:"api_key_env"`
	EnvFile   string        `yaml:"env_file"    json:"env_file,omitempty"`
	BaseURL   string        `yaml:"base_url"    json:"base_url"`
	Entity    string        `yaml:"entity"      json:"entity,omitempty"`
	Project   string        `yaml:"project"     json:"project"`
	RunName   string        `yaml:"run_name"    json:"run_name"`
	WorkDir   string        `yaml:"work_dir"    json:"work_dir"`
	Timeout   time.Duration `yaml:"timeout"     json:"timeout"`
}

// SyncConfig drives the file-sync configuration check.
type SyncConfig struct {
	Binary         string          `yaml:"binary"          json:"binary"`
	RequiredRemote string          `yaml:"required_remote" json:"required_remote"`
	RequiredMode   string          `yaml:"required_mode"   json:"required_mode"`
	Timeout        time.Duration   `yaml:"timeout"         json:"timeout"`
	ConfigFiles    []ConfigFileRef `yaml:"config_files"    json:"config_files"`
}

// ConfigFileRef names one location where the sync tool's config may live.
type ConfigFileRef struct {
	Location string `yaml:"location" json:"location"`
	Path     string `yaml:"path"     json:"path"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Tracker: TrackerConfig{
			APIKeyEnv: "WANDB_API_KEY",
			EnvFile:   ".env",
			BaseURL:   "https://api.wandb.ai",
			Project:   "pytorch240-test",
			RunName:   "integration-test",
			WorkDir:   ".",
			Timeout:   60 * time.Second,
		},
		Sync: SyncConfig{
			Binary:         "rclone",
			RequiredRemote: "dbx:",
			RequiredMode:   "600",
			Timeout:        30 * time.Second,
			ConfigFiles: []ConfigFileRef{
				{Location: "workspace", Path: "/workspace/.config/rclone/rclone.conf"},
				{Location: "root", Path: "/root/.config/rclone/rclone.conf"},
			},
		},
	}
}

// Validate rejects values that cannot drive a run.
func (c Config) Validate() error {
	if c.Tracker.Timeout < 0 {
		return fmt.Errorf("tracker.timeout must not be negative")
	}
	if c.Sync.Timeout < 0 {
		return fmt.Errorf("sync.timeout must not be negative")
	}
	if err := ValidRemote(c.Sync.RequiredRemote); err != nil {
		return fmt.Errorf("sync.required_remote: %w", err)
	}
	if c.Sync.RequiredMode != "" && !ValidMode(c.Sync.RequiredMode) {
		return fmt.Errorf("sync.required_mode %q is not a three-digit octal mode", c.Sync.RequiredMode)
	}
	for i, ref := range c.Sync.ConfigFiles {
		if strings.TrimSpace(ref.Location) == "" {
			return fmt.Errorf("sync.config_files[%d]: location is required", i)
		}
		if strings.TrimSpace(ref.Path) == "" {
			return fmt.Errorf("sync.config_files[%d]: path is required", i)
		}
	}
	return nil
}

// ValidRemote rejects a blank required-remote prefix, which would match
// every listed remote.
func ValidRemote(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("remote must not be empty")
	}
	return nil
}

// ValidMode reports whether s is a three-digit octal permission string.
func ValidMode(s string) bool {
	if len(s) != 3 {
		return false
	}
	_, err := strconv.ParseUint(s, 8, 32)
	return err == nil
}

// Merge overlays explicit (non-zero) values from override onto c.
func (c Config) Merge(override Config) Config {
	result := c

	t := override.Tracker
	if t.APIKeyEnv != "" {
		result.Tracker.APIKeyEnv = t.APIKeyEnv
	}
	if t.EnvFile != "" {
		result.Tracker.EnvFile = t.EnvFile
	}
	if t.BaseURL != "" {
		result.Tracker.BaseURL = t.BaseURL
	}
	if t.Entity != "" {
		result.Tracker.Entity = t.Entity
	}
	if t.Project != "" {
		result.Tracker.Project = t.Project
	}
	if t.RunName != "" {
		result.Tracker.RunName = t.RunName
	}
	if t.WorkDir != "" {
		result.Tracker.WorkDir = t.WorkDir
	}
	if t.Timeout != 0 {
		result.Tracker.Timeout = t.Timeout
	}

	s := override.Sync
	if s.Binary != "" {
		result.Sync.Binary = s.Binary
	}
	if s.RequiredRemote != "" {
		result.Sync.RequiredRemote = s.RequiredRemote
	}
	if s.RequiredMode != "" {
		result.Sync.RequiredMode = s.RequiredMode
	}
	if s.Timeout != 0 {
		result.Sync.Timeout = s.Timeout
	}
	// Explicit config files replace the defaults entirely.
	if len(s.ConfigFiles) > 0 {
		result.Sync.ConfigFiles = s.ConfigFiles
	}

	return result
}
