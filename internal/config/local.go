package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/codeclip/internal/validation"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// LocalConfig holds configuration for the CLI and daemon
type LocalConfig struct {
	Daemon        DaemonConfig        `yaml:"daemon"`
	Storage       StorageConfig       `yaml:"storage"`
	Notifications NotificationsConfig `yaml:"notifications"`

	// Timezone is the IANA zone calendar days are counted in
	Timezone string `yaml:"timezone" validate:"required"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port      int    `yaml:"port" validate:"min=1,max=65535"`
	Bind      string `yaml:"bind" validate:"required"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	RateLimit int    `yaml:"rate_limit"` // requests per second per client, 0 disables
}

// StorageConfig selects and configures the slot backend
type StorageConfig struct {
	Backend string      `yaml:"backend" validate:"oneof=file sqlite redis postgres"`
	Path    string      `yaml:"path,omitempty"` // data dir for file, database file for sqlite
	Redis   RedisConfig `yaml:"redis"`

	// PostgresURL carries credentials and is loaded from secrets.yaml
	PostgresURL string `yaml:"-"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	Password string `yaml:"-"` // Loaded from secrets.yaml
}

// NotificationsConfig controls where completion events go
type NotificationsConfig struct {
	Log   bool `yaml:"log"`
	Queue bool `yaml:"queue"`

	// RabbitMQURL carries credentials and is loaded from secrets.yaml
	RabbitMQURL string `yaml:"-"`
}

// SecretsConfig holds credentials loaded from secrets.yaml
type SecretsConfig struct {
	Redis struct {
		Password string `yaml:"password,omitempty"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url,omitempty"`
	} `yaml:"postgres"`
	RabbitMQ struct {
		URL string `yaml:"url,omitempty"`
	} `yaml:"rabbitmq"`
}

// Dir returns the path to ~/.codeclip
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".codeclip"), nil
}

// EnsureDir creates ~/.codeclip and subdirectories if they don't exist
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs", "data"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns the defaults: file storage under ~/.codeclip,
// log notifications only, days counted in UTC.
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:      7433,
			Bind:      "127.0.0.1",
			LogLevel:  "info",
			RateLimit: 20,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "codeclip:",
			},
		},
		Notifications: NotificationsConfig{
			Log: true,
		},
		Timezone: "UTC",
	}
}

// Validate checks the config values
func (c *LocalConfig) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %s", validation.Summary(err))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: unknown timezone %q", c.Timezone)
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresURL == "" {
		return errors.New("invalid config: postgres storage needs a URL in secrets.yaml or CODECLIP_POSTGRES_URL")
	}
	if c.Notifications.Queue && c.Notifications.RabbitMQURL == "" {
		return errors.New("invalid config: queue notifications need a URL in secrets.yaml or CODECLIP_RABBITMQ_URL")
	}
	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded
func (c *LocalConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// DataPath returns the storage path for the file and sqlite backends,
// defaulting to locations under dir.
func (c *LocalConfig) DataPath(dir string) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Backend == BackendSQLite {
		return filepath.Join(dir, "codeclip.db")
	}
	return filepath.Join(dir, "data")
}

// LoadLocalConfig loads configuration from ~/.codeclip/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFrom(dir)
}

func loadFrom(dir string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// loadSecrets loads credentials from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	data, err := os.ReadFile(filepath.Join(dir, "secrets.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Storage.Redis.Password = secrets.Redis.Password
	cfg.Storage.PostgresURL = secrets.Postgres.URL
	cfg.Notifications.RabbitMQURL = secrets.RabbitMQ.URL
	return nil
}

// SaveLocalConfig saves configuration to ~/.codeclip/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}
	return saveTo(dir, cfg)
}

func saveTo(dir string, cfg *LocalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveSecrets saves credentials to ~/.codeclip/secrets.yaml
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// owner read/write only
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}
