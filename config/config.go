// Package config loads the application configuration from an
// optional YAML file with environment overrides. The resulting value
// is threaded explicitly into the engine and adapter — there is no
// ambient global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AI configures the optional external inference capability.
type AI struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is the full application configuration.
type Config struct {
	DataPath string `yaml:"data_path"`
	Campaign string `yaml:"campaign"`
	AI       AI     `yaml:"ai"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataPath: filepath.Join(home, ".dmcore", "dmcore.db"),
		AI: AI{
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 8,
		},
	}
}

// Load reads the YAML config at path, layered over defaults. A missing
// file is not an error — defaults apply. The DM_API_KEY environment
// variable overrides the file's API key so keys can stay out of
// config files.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults apply
		case err != nil:
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv("DM_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 8
	}
	if cfg.DataPath == "" {
		cfg.DataPath = Default().DataPath
	}

	return cfg, nil
}

// SuggestTimeout returns the bounded wait for inference calls.
func (c *Config) SuggestTimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}
