package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arkive-app/arkive/internal/constants"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	wantDB := filepath.Join(constants.DefaultDataDir, constants.DefaultDBFile)
	if cfg.DBPath != wantDB {
		t.Errorf("Expected DBPath to be %s, got %s", wantDB, cfg.DBPath)
	}

	wantArchive := filepath.Join(constants.DefaultDataDir, constants.DefaultArchiveDir)
	if cfg.ArchiveDir != wantArchive {
		t.Errorf("Expected ArchiveDir to be %s, got %s", wantArchive, cfg.ArchiveDir)
	}

	if cfg.Concurrency != constants.DefaultConcurrency {
		t.Errorf("Expected Concurrency to be %d, got %d", constants.DefaultConcurrency, cfg.Concurrency)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("ARCHIVE_DIR", "/tmp/archive")
	t.Setenv("CONCURRENCY", "4")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DBPath to be /tmp/test.db, got %s", cfg.DBPath)
	}
	if cfg.ArchiveDir != "/tmp/archive" {
		t.Errorf("Expected ArchiveDir to be /tmp/archive, got %s", cfg.ArchiveDir)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Expected Concurrency to be 4, got %d", cfg.Concurrency)
	}
}

func TestLoadBadConcurrency(t *testing.T) {
	t.Setenv("CONCURRENCY", "not-a-number")

	cfg := Load()
	if cfg.Concurrency != constants.DefaultConcurrency {
		t.Errorf("Expected fallback concurrency %d, got %d", constants.DefaultConcurrency, cfg.Concurrency)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Port:        "8080",
		DBPath:      "arkive.db",
		ArchiveDir:  "./data/archive",
		Concurrency: 2,
		LogLevel:    "info",
		LogFormat:   "text",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"non-numeric port", func(c *Config) { c.Port = "abc" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty archive dir", func(c *Config) { c.ArchiveDir = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("ARKIVE_TEST_KEY")
	if got := getEnv("ARKIVE_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}

	t.Setenv("ARKIVE_TEST_KEY", "value")
	if got := getEnv("ARKIVE_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("Expected value, got %s", got)
	}
}
