package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/quotescrape/scraper"
	"gopkg.in/yaml.v3"
)

// HistoryFileConfig represents the run ledger section of the config file.
type HistoryFileConfig struct {
	DSN string `yaml:"dsn"`
}

// ServeFileConfig represents the API server section of the config file.
type ServeFileConfig struct {
	Addr string `yaml:"addr"`
}

// FileConfig represents the structure of ~/.quotescrape/config.yaml.
type FileConfig struct {
	Scraper   scraper.ScraperConfig `yaml:"scraper"`
	Output    string                `yaml:"output"`
	Timeout   string                `yaml:"timeout"`
	UserAgent string                `yaml:"user_agent"`
	History   HistoryFileConfig     `yaml:"history"`
	Serve     ServeFileConfig       `yaml:"serve"`
}

// DefaultConfigPath returns ~/.quotescrape/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".quotescrape", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path, or from DefaultConfigPath
// when path is empty. Returns nil if the file doesn't exist (not an error).
// Returns error if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
