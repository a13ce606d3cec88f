// Package settings manages persistent user settings for the bgpprop CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Settings holds persistent user preferences. Flags and environment
// variables take precedence over these.
type Settings struct {
	// LogDir is the default --log-dir-path
	LogDir string `json:"log_dir,omitempty"`

	// SSHUser is the default --ssh-user
	SSHUser string `json:"ssh_user,omitempty"`

	// RedisAddr enables result publishing when set
	RedisAddr string `json:"redis_addr,omitempty"`

	RedisDB int `json:"redis_db,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bgpprop_settings.json"
	}
	return filepath.Join(home, ".bgpprop", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Keys returns the names accepted by Get and Set.
func Keys() []string {
	keys := []string{"log_dir", "ssh_user", "redis_addr", "redis_db"}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a setting by its key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "log_dir":
		return s.LogDir, nil
	case "ssh_user":
		return s.SSHUser, nil
	case "redis_addr":
		return s.RedisAddr, nil
	case "redis_db":
		return strconv.Itoa(s.RedisDB), nil
	}
	return "", fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
}

// Set assigns a setting by its key.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "log_dir":
		s.LogDir = value
	case "ssh_user":
		s.SSHUser = value
	case "redis_addr":
		s.RedisAddr = value
	case "redis_db":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("redis_db must be a non-negative integer, got %q", value)
		}
		s.RedisDB = n
	default:
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
