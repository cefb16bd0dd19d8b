package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Environment holds the settings read from environment variables.
// Secrets only ever come from here, never from the config file.
type Environment struct {
	ConfigPath string `env:"FORTRESS_CONFIG_PATH"`
	Home       string `env:"FORTRESS_HOME"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	APIKey       string `env:"API_KEY"`

	StorageAccessKeyID     string `env:"FORTRESS_STORAGE_ACCESS_KEY_ID"`
	StorageSecretAccessKey string `env:"FORTRESS_STORAGE_SECRET_ACCESS_KEY"`
}

// LoadEnvironment parses the process environment.
func LoadEnvironment() (*Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &e, nil
}

// AssistantAPIKey returns GEMINI_API_KEY, falling back to API_KEY.
func (e *Environment) AssistantAPIKey() string {
	if e.GeminiAPIKey != "" {
		return e.GeminiAPIKey
	}
	return e.APIKey
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - FORTRESS_CONFIG_PATH: config file location (default: ~/.config/fortress.toml)
//   - FORTRESS_HOME: base directory for fortress data (default: ~/.local/share/fortress)
func GetDefaults() (map[string]string, error) {
	e, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}

	configPath, err := getConfigPath(e)
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir(e)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func getConfigPath(e *Environment) (string, error) {
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fortress.toml"), nil
}

// getBaseDir falls back to the XDG default ~/.local/share/fortress.
func getBaseDir(e *Environment) (string, error) {
	if e.Home != "" {
		return e.Home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "fortress"), nil
}
