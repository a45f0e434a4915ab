// Package config loads codeclip settings from ~/.codeclip, a .env file and
// CODECLIP_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads ~/.codeclip/config.yaml and secrets.yaml, loads envFile when it
// exists, applies environment overrides and validates the result.
func Load(envFile string) (*LocalConfig, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := LoadLocalConfig()
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from path without overriding ones already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with CODECLIP_* environment variables
func ApplyEnv(cfg *LocalConfig) {
	cfg.Storage.Backend = strings.ToLower(getEnv("CODECLIP_STORAGE", cfg.Storage.Backend))
	cfg.Storage.Path = getEnv("CODECLIP_DATA_PATH", cfg.Storage.Path)
	cfg.Storage.Redis.Addr = getEnv("CODECLIP_REDIS_ADDR", cfg.Storage.Redis.Addr)
	cfg.Storage.Redis.Password = getEnv("CODECLIP_REDIS_PASSWORD", cfg.Storage.Redis.Password)
	cfg.Storage.Redis.DB = getEnvInt("CODECLIP_REDIS_DB", cfg.Storage.Redis.DB)
	cfg.Storage.PostgresURL = getEnv("CODECLIP_POSTGRES_URL", cfg.Storage.PostgresURL)

	cfg.Notifications.RabbitMQURL = getEnv("CODECLIP_RABBITMQ_URL", cfg.Notifications.RabbitMQURL)
	cfg.Notifications.Queue = getEnvBool("CODECLIP_NOTIFY_QUEUE", cfg.Notifications.Queue)

	cfg.Daemon.Port = getEnvInt("CODECLIP_PORT", cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv("CODECLIP_BIND", cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = strings.ToLower(getEnv("CODECLIP_LOG_LEVEL", cfg.Daemon.LogLevel))

	cfg.Timezone = getEnv("CODECLIP_TIMEZONE", cfg.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
