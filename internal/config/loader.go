package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the maintenance service.
// Values come from an optional YAML file overridden by CMMS_* environment
// variables.
type Config struct {
	HTTPPort   int           `yaml:"http_port"`
	SQLiteDSN  string        `yaml:"sqlite_dsn"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	LogLevel   string        `yaml:"log_level"`
}

// Load resolves configuration with the following precedence: built-in
// defaults, then the YAML file named by CMMS_CONFIG_FILE, then individual
// CMMS_* environment variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:cmms.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
	}

	if path := strings.TrimSpace(os.Getenv("CMMS_CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.merge(loaded)
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CMMS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CMMS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CMMS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CMMS_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CMMS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if level := strings.TrimSpace(os.Getenv("CMMS_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so absent YAML keys do not
// clobber defaults.
type fileConfig struct {
	HTTPPort   *int    `yaml:"http_port"`
	SQLiteDSN  *string `yaml:"sqlite_dsn"`
	SessionTTL *string `yaml:"session_ttl"`
	LogLevel   *string `yaml:"log_level"`
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return parsed, nil
}

func (c Config) merge(file fileConfig) Config {
	if file.HTTPPort != nil && *file.HTTPPort > 0 {
		c.HTTPPort = *file.HTTPPort
	}
	if file.SQLiteDSN != nil && strings.TrimSpace(*file.SQLiteDSN) != "" {
		c.SQLiteDSN = strings.TrimSpace(*file.SQLiteDSN)
	}
	if file.SessionTTL != nil {
		if ttl, err := time.ParseDuration(strings.TrimSpace(*file.SessionTTL)); err == nil && ttl > 0 {
			c.SessionTTL = ttl
		}
	}
	if file.LogLevel != nil && strings.TrimSpace(*file.LogLevel) != "" {
		c.LogLevel = strings.TrimSpace(*file.LogLevel)
	}
	return c
}
