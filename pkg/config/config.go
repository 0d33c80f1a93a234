/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/nodestate/pkg/storage"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the nodestate configuration
type Config struct {
	DataDir    string  `yaml:"data_dir"`
	ArchiveDir string  `yaml:"archive_dir"`
	Port       int     `yaml:"port"`
	Bind       string  `yaml:"bind"`
	APIKey     string  `yaml:"api_key,omitempty"`
	Storage    Storage `yaml:"storage"`
	Logging    Logging `yaml:"logging"`
}

// Storage controls how heaps are written and archived
type Storage struct {
	Fsync       bool   `yaml:"fsync"`
	BufferSize  int    `yaml:"buffer_size"`
	Compression string `yaml:"compression"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "./data/heap",
		ArchiveDir: "./data/archive",
		Port:       8080,
		Bind:       "127.0.0.1",
		Storage: Storage{
			Fsync:       true,
			BufferSize:  64 * 1024,
			Compression: "zstd",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks values that cannot be fixed up by defaults
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Storage.BufferSize < 0 {
		return fmt.Errorf("invalid buffer size: %d", c.Storage.BufferSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := storage.ParseCompression(c.Storage.Compression); err != nil {
		return fmt.Errorf("invalid compression: %w", err)
	}
	return nil
}

// LogLevel parses the configured logging level
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration rooted at dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = filepath.Join(dataDir, "heap")
		config.ArchiveDir = filepath.Join(dataDir, "archive")
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./nodestate.yaml"
	}

	// For Linux/macOS, use ~/.config/nodestate/config.yaml
	configDir := filepath.Join(homeDir, ".config", "nodestate")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
