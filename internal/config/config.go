package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arkive-app/arkive/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DataDir     string
	DBPath      string
	ArchiveDir  string
	Concurrency int
	LogLevel    string
	LogFormat   string
}

// Load loads configuration from a .env file (if present) and environment
// variables with defaults
func Load() *Config {
	// missing .env is fine; env vars and defaults cover everything
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", constants.DefaultDataDir)

	return &Config{
		Port:        getEnv("PORT", constants.DefaultPort),
		DataDir:     dataDir,
		DBPath:      getEnv("DB_PATH", filepath.Join(dataDir, constants.DefaultDBFile)),
		ArchiveDir:  getEnv("ARCHIVE_DIR", filepath.Join(dataDir, constants.DefaultArchiveDir)),
		Concurrency: getEnvInt("CONCURRENCY", constants.DefaultConcurrency),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ArchiveDir == "" {
		errors = append(errors, "ARCHIVE_DIR cannot be empty")
	}

	if c.Concurrency < 1 {
		errors = append(errors, fmt.Sprintf("CONCURRENCY must be at least 1, got: %d", c.Concurrency))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
