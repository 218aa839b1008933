// Package config loads and saves the client configuration stored at
// ~/.flux/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default backend URL when neither the config file nor FLUX_API_URL set one.
const defaultAPIURL = "http://localhost:3000/api"

// Config is the persisted client configuration.
type Config struct {
	// APIURL is the backend base URL, including the /api prefix.
	APIURL string `yaml:"api_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// NoPersist keeps session state in memory only.
	NoPersist bool `yaml:"no_persist"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    defaultAPIURL,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Path returns the configuration file location, ~/.flux/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flux", "config.yaml"), nil
}

// Load reads the configuration file, applying defaults for missing fields and
// the FLUX_API_URL environment override. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.APIURL == "" {
			cfg.APIURL = defaultAPIURL
		}
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
		if cfg.LogFormat == "" {
			cfg.LogFormat = "text"
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if url := os.Getenv("FLUX_API_URL"); url != "" {
		cfg.APIURL = url
	}

	return cfg, nil
}

// Save writes the configuration file, creating ~/.flux if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Get returns a named field value, for 'flux config get'.
func Get(cfg Config, key string) (string, error) {
	switch key {
	case "api_url":
		return cfg.APIURL, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_format":
		return cfg.LogFormat, nil
	case "no_persist":
		return fmt.Sprintf("%t", cfg.NoPersist), nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set updates a named field, for 'flux config set'.
func Set(cfg *Config, key, value string) error {
	switch key {
	case "api_url":
		cfg.APIURL = value
	case "log_level":
		cfg.LogLevel = value
	case "log_format":
		cfg.LogFormat = value
	case "no_persist":
		cfg.NoPersist = value == "true"
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
