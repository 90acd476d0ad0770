package config

import (
	"os"
	"path/filepath"
)

// ConfigEnv overrides the config file location.
const ConfigEnv = "OSP_CONFIG"

// GetConfigPath returns $OSP_CONFIG if set, otherwise
// ~/.one-shot-planner/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(ConfigEnv); configPath != "" {
		return configPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".one-shot-planner", "config"), nil
}

// EnsureConfigDir ensures that the configuration directory exists.
func EnsureConfigDir() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}
