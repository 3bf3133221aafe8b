package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ApprovalMode represents the approval policy for applying file changes
type ApprovalMode string

const (
	// Suggest mode previews the patch and asks for confirmation before applying
	Suggest ApprovalMode = "suggest"
	// AutoApply mode applies patches without asking
	AutoApply ApprovalMode = "auto"
)

// Config holds all configuration options for the application
type Config struct {
	// Apply configuration
	ApprovalMode ApprovalMode `mapstructure:"approval_mode"`
	DryRun       bool         `mapstructure:"dry_run"` // Preview only, never touch the filesystem
	Dir          string       `mapstructure:"dir"`     // Directory patches are applied in

	// Logging configuration
	Debug   bool   `mapstructure:"debug"`    // Enable debug logging
	LogFile string `mapstructure:"log_file"` // Path to log file
}

const (
	// DefaultConfigDir is the per-user directory holding config.yaml
	DefaultConfigDir = ".applypatch"
)

// Load loads configuration from the config file and environment variables
func Load() (*Config, error) {
	config := &Config{
		ApprovalMode: Suggest,
		Dir:          getWorkingDirectory(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("APPLYPATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.ApprovalMode != Suggest && config.ApprovalMode != AutoApply {
		return nil, fmt.Errorf("invalid approval mode: %s", config.ApprovalMode)
	}

	return config, nil
}

// getConfigDir returns the path to the config directory
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		os.MkdirAll(configDir, 0755)
	}

	return configDir
}

// getWorkingDirectory returns the current working directory
func getWorkingDirectory() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
