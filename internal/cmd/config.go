package cmd

import (
	"fmt"

	"github.com/harrison/jenkins-job-linter/internal/config"
)

// loadConfig reads an explicit config file, or .jjl/config.yaml in the
// working directory when path is empty
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadConfig(path)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
