package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Collection
	Days      int
	PageSize  int
	RecentCap int
	Strategy  string // "api" or "web"

	// Browser (web strategy)
	BrowserHeadless bool
	RenderTimeout   time.Duration

	// API Server
	APIPort string
	APIHost string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		Days:            getEnvInt("PULSE_DAYS", 30),
		PageSize:        getEnvInt("PULSE_PAGE_SIZE", 100),
		RecentCap:       getEnvInt("PULSE_RECENT_CAP", 5),
		Strategy:        getEnv("PULSE_STRATEGY", "api"),
		BrowserHeadless: getEnvBool("BROWSER_HEADLESS", true),
		RenderTimeout:   getEnvDuration("RENDER_TIMEOUT", 10*time.Second),
		APIPort:         getEnv("API_PORT", "8080"),
		APIHost:         getEnv("API_HOST", "localhost"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Days <= 0 {
		return &ConfigError{Field: "PULSE_DAYS", Message: "must be a positive number of days"}
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		return &ConfigError{Field: "PULSE_PAGE_SIZE", Message: "must be between 1 and 100"}
	}
	if c.RecentCap <= 0 {
		return &ConfigError{Field: "PULSE_RECENT_CAP", Message: "must be positive"}
	}
	if c.Strategy != "api" && c.Strategy != "web" {
		return &ConfigError{Field: "PULSE_STRATEGY", Message: "must be 'api' or 'web'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
