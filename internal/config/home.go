package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that overrides the jjl home directory
const HomeEnv = "JJL_HOME"

// GetHome returns the jjl home directory
// Priority order:
//  1. JJL_HOME environment variable (if set)
//  2. .jjl in the current working directory
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".jjl")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create jjl home directory: %w", err)
	}

	return home, nil
}

// GetHistoryDBPath returns the path of the history database
// An explicit configured path wins; otherwise $JJL_HOME/history.db
func (c *Config) GetHistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}

	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
