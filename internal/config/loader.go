package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zapretctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/zapretctl"
	configFileName = "config.yaml"
)

// osUserHomeDir is a variable so tests can redirect the home directory.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/zapretctl, or an empty string when
// the home directory cannot be determined.
func GetDefaultConfigPath() string {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from configPath/config.yaml on top of the
// defaults. A missing file is not an error. Relative WorkDir and
// StrategyStorePath values are resolved against the current directory so
// later stages never depend on where a subprocess runs.
func LoadConfig(configPath string) (ZapretConfig, error) {
	cfg := GetDefaultConfig()

	if configPath != "" {
		configFilePath := filepath.Join(configPath, configFileName)
		data, err := os.ReadFile(configFilePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
		case err != nil:
			logging.Error("Config", err, "Error reading %s", configFilePath)
			return ZapretConfig{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return ZapretConfig{}, NewConfigurationErrorWithDetails(
					configFilePath, configFileName, "parse",
					"config file is not valid YAML", err.Error(),
					[]string{"Check indentation and quoting", "Remove the file to fall back to defaults"},
				)
			}
			logging.Info("Config", "Loaded configuration from %s", configFilePath)
		}
	}

	if err := cfg.Validate(); err != nil {
		return ZapretConfig{}, err
	}

	if err := cfg.resolvePaths(); err != nil {
		return ZapretConfig{}, fmt.Errorf("failed to resolve paths: %w", err)
	}
	return cfg, nil
}

func (c *ZapretConfig) resolvePaths() error {
	for _, p := range []*string{&c.WorkDir, &c.StrategyStorePath} {
		if filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}
