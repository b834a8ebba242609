package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the home directory
const HomeEnv = "FILESCOUT_HOME"

// ConfigFileName is the config file inside the home directory
const ConfigFileName = "config.yaml"

// GetHome returns the filescout home directory
// Priority order:
//  1. FILESCOUT_HOME environment variable (if set)
//  2. ~/.filescout
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create filescout home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	home := filepath.Join(userHome, ".filescout")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create filescout home directory: %w", err)
	}
	return home, nil
}

// ConfigPath returns the config file path inside home
func ConfigPath(home string) string {
	return filepath.Join(home, ConfigFileName)
}

// EnsureDirs creates the parent directories of every configured path
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.LogDir,
		filepath.Dir(c.DBPath),
		filepath.Dir(c.Cache.Path),
		filepath.Dir(c.ThresholdsPath),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
