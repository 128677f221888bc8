package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	LogLevel    string
	DatabaseURL string

	GitHub GitHubConfig
}

type GitHubConfig struct {
	Token        string
	Organization string
	APIURL       string
	Timeout      time.Duration
}

// Load reads the configuration from the environment. Values in a .env file
// in the working directory are used for variables not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("GITHUB_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_TIMEOUT: %w", err)
	}

	return &Config{
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		GitHub: GitHubConfig{
			Token:        getEnv("GITHUB_TOKEN", ""),
			Organization: getEnv("GITHUB_ORG", ""),
			APIURL:       getEnv("GITHUB_API_URL", "https://api.github.com"),
			Timeout:      timeout,
		},
	}, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.GitHub.Organization == "" {
		missing = append(missing, "GITHUB_ORG")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s should be provided either via command line or in a '.env' file",
			strings.Join(missing, " and "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// JournalEnabled reports whether runs are recorded in the database.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.New("invalid LOG_LEVEL: " + c.LogLevel)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
