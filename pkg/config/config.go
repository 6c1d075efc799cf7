// Package config loads process settings for the desk-display binaries
// from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SettingsVersion is the supported settings file version.
const SettingsVersion = 1

// Settings holds everything the daemon and admin server need that is not
// part of the versioned schedule document itself.
type Settings struct {
	Version int `yaml:"version"`
	Display struct {
		TickInterval time.Duration `yaml:"tick_interval"`
		DarkHours    string        `yaml:"dark_hours"`
	} `yaml:"display"`
	Paths struct {
		Config  string `yaml:"config"`
		State   string `yaml:"state"`
		Ledger  string `yaml:"ledger"`
		Archive string `yaml:"archive"`
	} `yaml:"paths"`
	Store struct {
		Retention int `yaml:"retention"`
	} `yaml:"store"`
	Admin struct {
		Port int `yaml:"port"`
	} `yaml:"admin"`
	Maintenance struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"maintenance"`
}

// TickInterval returns the display tick interval, defaulting to 12s.
func (s *Settings) TickInterval() time.Duration {
	if s.Display.TickInterval <= 0 {
		return 12 * time.Second
	}

	return s.Display.TickInterval
}

// AdminPort returns the admin API port, defaulting to 5001.
func (s *Settings) AdminPort() int {
	if s.Admin.Port == 0 {
		return 5001
	}

	return s.Admin.Port
}

// MaintenanceSchedule returns the cron expression for nightly maintenance,
// defaulting to 03:00 local time.
func (s *Settings) MaintenanceSchedule() string {
	if s.Maintenance.Schedule == "" {
		return "0 3 * * *"
	}

	return s.Maintenance.Schedule
}

// Load reads and version-checks a settings file.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := yaml.Unmarshal(b, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if settings.Version != SettingsVersion {
		return nil, fmt.Errorf("unsupported settings version: %d", settings.Version)
	}

	return &settings, nil
}

// Default returns settings with every field at its zero value, version
// stamped, for running without a settings file.
func Default() *Settings {
	return &Settings{Version: SettingsVersion}
}
