package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pevans/quotescrape/scraper"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL    = "QUOTESCRAPE_BASE_URL"
	EnvOutput     = "QUOTESCRAPE_OUTPUT"
	EnvTimeout    = "QUOTESCRAPE_TIMEOUT"
	EnvMaxPages   = "QUOTESCRAPE_MAX_PAGES"
	EnvUserAgent  = "QUOTESCRAPE_USER_AGENT"
	EnvHistoryDSN = "QUOTESCRAPE_HISTORY_DSN"
)

const (
	DefaultOutputPath = "quotes.csv"
	DefaultServeAddr  = "localhost:8082"
)

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL    string
	OutputPath string
	Timeout    time.Duration // 0 means no timeout
	MaxPages   int           // 0 means no limit
	UserAgent  string        // empty sends the HTTP client's default
	HistoryDSN string        // empty disables the run ledger
	ServeAddr  string
	Selectors  scraper.ListConfig
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		BaseURL:    scraper.DefaultBaseURL,
		OutputPath: DefaultOutputPath,
		ServeAddr:  DefaultServeAddr,
		Selectors:  scraper.NewListConfig(),
	}
}

// Load builds a Config from defaults, the config file at path and the
// environment, in that order. Flags are applied by the caller.
func Load(path string) (*Config, error) {
	cfg := Default()

	fileCfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(fileCfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyFile overrides fields set in the config file. A nil file is a no-op.
func (c *Config) ApplyFile(f *FileConfig) error {
	if f == nil {
		return nil
	}

	if f.Scraper.BaseURL != "" {
		c.BaseURL = f.Scraper.BaseURL
	}
	if f.Scraper.ListConfig.MaxPages != 0 {
		c.MaxPages = f.Scraper.ListConfig.MaxPages
	}
	c.Selectors = mergeSelectors(c.Selectors, f.Scraper.ListConfig)

	if f.Output != "" {
		c.OutputPath = f.Output
	}
	if f.Timeout != "" {
		timeout, err := parseTimeout(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		c.Timeout = timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.History.DSN != "" {
		c.HistoryDSN = f.History.DSN
	}
	if f.Serve.Addr != "" {
		c.ServeAddr = f.Serve.Addr
	}

	return nil
}

// ApplyEnv overrides fields from QUOTESCRAPE_* environment variables.
func (c *Config) ApplyEnv() error {
	c.BaseURL = getEnv(EnvBaseURL, c.BaseURL)
	c.OutputPath = getEnv(EnvOutput, c.OutputPath)
	c.UserAgent = getEnv(EnvUserAgent, c.UserAgent)
	c.HistoryDSN = getEnv(EnvHistoryDSN, c.HistoryDSN)

	timeout, err := getEnvDuration(EnvTimeout, c.Timeout)
	if err != nil {
		return err
	}
	c.Timeout = timeout

	maxPages, err := getEnvInt(EnvMaxPages, c.MaxPages)
	if err != nil {
		return err
	}
	c.MaxPages = maxPages

	return nil
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("invalid max pages %d: must not be negative", c.MaxPages)
	}
	return nil
}

// ScraperConfig returns the crawler settings.
func (c *Config) ScraperConfig() scraper.ScraperConfig {
	list := c.Selectors.WithDefaults()
	list.MaxPages = c.MaxPages

	return scraper.ScraperConfig{
		BaseURL:    c.BaseURL,
		ListConfig: list,
	}
}

// mergeSelectors copies every non-empty selector from override onto base.
func mergeSelectors(base, override scraper.ListConfig) scraper.ListConfig {
	if override.QuoteSelector != "" {
		base.QuoteSelector = override.QuoteSelector
	}
	if override.TextSelector != "" {
		base.TextSelector = override.TextSelector
	}
	if override.AuthorSelector != "" {
		base.AuthorSelector = override.AuthorSelector
	}
	if override.TagSelector != "" {
		base.TagSelector = override.TagSelector
	}
	if override.PaginationSelector != "" {
		base.PaginationSelector = override.PaginationSelector
	}
	return base
}

// parseTimeout validates that a timeout is a valid duration.
func parseTimeout(value string) (time.Duration, error) {
	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%q must be a valid duration (e.g., 30s, 1m)", value)
	}
	return timeout, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration environment variable.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	timeout, err := parseTimeout(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return timeout, nil
}

// getEnvInt parses an integer environment variable.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a number", key, value)
	}
	return n, nil
}
