package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBackendURL = "http://localhost:5000/api/todo"
	DefaultUsername   = "employee"
	DefaultPassword   = "employee_password"

	ReconcileAlways  = "always"
	ReconcileOnDrift = "on-drift"
)

// Config holds user preferences
type Config struct {
	// Remote activity API
	BackendURL     string        `yaml:"backend_url" json:"backend_url"`
	Username       string        `yaml:"username" json:"username"`
	Password       string        `yaml:"password" json:"-"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"` // 0 keeps the transport default

	Reconcile     string `yaml:"reconcile" json:"reconcile"`           // always | on-drift
	ConfirmEdit   bool   `yaml:"confirm_edit" json:"confirm_edit"`     // Ask before saving an edit
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns ~/.activityboard
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".activityboard"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "activityboard.log")
	}

	return &Config{
		BackendURL:    DefaultBackendURL,
		Username:      DefaultUsername,
		Password:      DefaultPassword,
		Reconcile:     ReconcileAlways,
		ConfirmEdit:   true,
		ConfirmDelete: true,
		LogLevel:      "INFO",
		LogFile:       logPath,
		LogConsole:    false,
	}
}

// applyEnv overrides fields from ACTIVITYBOARD_* variables
func (c *Config) applyEnv() {
	c.BackendURL = getEnv("ACTIVITYBOARD_BACKEND_URL", c.BackendURL)
	c.Username = getEnv("ACTIVITYBOARD_USERNAME", c.Username)
	c.Password = getEnv("ACTIVITYBOARD_PASSWORD", c.Password)
	c.LogLevel = getEnv("ACTIVITYBOARD_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("ACTIVITYBOARD_LOG_FILE", c.LogFile)
	if v := os.Getenv("ACTIVITYBOARD_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	switch c.Reconcile {
	case ReconcileAlways, ReconcileOnDrift:
	default:
		return fmt.Errorf("reconcile must be %q or %q, got %q", ReconcileAlways, ReconcileOnDrift, c.Reconcile)
	}
	return nil
}

// Load loads config from ~/.activityboard/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile reads the YAML file at path (defaults when absent), then a .env
// file in the working directory, then ACTIVITYBOARD_* variables.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults if no config
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves config to ~/.activityboard/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.SaveFile(filepath.Join(dir, "config.yaml"))
}

// SaveFile writes the config as YAML. The file holds credentials, so it is
// private to the user.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
