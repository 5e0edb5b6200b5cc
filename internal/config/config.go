package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Backend service
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Credential storage
	CredentialsPath string

	// Status banners
	SuccessBannerTTL time.Duration
	ErrorBannerTTL   time.Duration

	// Substack email-link verification
	SubstackVerifyTimeout time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:3001"),
		CredentialsPath: getEnv("CREDENTIALS_PATH", "data/credentials.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	// Parse durations
	var err error
	cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg.SuccessBannerTTL, err = time.ParseDuration(getEnv("SUCCESS_BANNER_TTL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUCCESS_BANNER_TTL: %w", err)
	}

	cfg.ErrorBannerTTL, err = time.ParseDuration(getEnv("ERROR_BANNER_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ERROR_BANNER_TTL: %w", err)
	}

	cfg.SubstackVerifyTimeout, err = time.ParseDuration(getEnv("SUBSTACK_VERIFY_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUBSTACK_VERIFY_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", c.APIBaseURL)
	}
	return nil
}

// ValidateForPosting checks configuration needed to submit posts.
func (c *Config) ValidateForPosting() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CredentialsPath == "" {
		return fmt.Errorf("CREDENTIALS_PATH is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
