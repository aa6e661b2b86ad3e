// Package config provides configuration management for the input
// router. Only application settings live here; device assignments are
// session-scoped and never persisted.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Config represents the application configuration
type Config struct {
	API APIConfig `json:"api"`
	Log LogConfig `json:"log"`

	// FocusPollMs is the foreground-sampling interval while typing
	// redirection is active, in milliseconds.
	FocusPollMs int `json:"focus_poll_ms"`
}

// APIConfig configures the local control server the UI layer talks to.
type APIConfig struct {
	// Enabled starts the control server on launch.
	Enabled bool `json:"enabled"`

	// Port is the loopback port for the control server.
	Port int `json:"port"`

	// Token is an optional bearer token for control requests.
	Token string `json:"token,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is a logrus level name ("debug", "info", "warn", "error").
	Level string `json:"level"`

	// File, when set, receives rotated log output in addition to
	// stderr.
	File string `json:"file,omitempty"`
}

// Default returns a new Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Enabled: true,
			Port:    18311,
		},
		Log: LogConfig{
			Level: "info",
		},
		FocusPollMs: 350,
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager rooted at the default
// per-user config path.
func NewManager() (*Manager, error) {
	configPath, err := configPath()
	if err != nil {
		return nil, err
	}
	return &Manager{
		configPath: configPath,
		config:     Default(),
	}, nil
}

// NewManagerAt creates a manager for an explicit config file path.
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     Default(),
	}
}

// configPath returns the path to the configuration file
func configPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "mseat")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "mseat")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "mseat")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file keeps the
// defaults and is not an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	m.config = cfg
	return nil
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.config
}

// Set replaces the current configuration.
func (m *Manager) Set(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = &cfg
}
