// Package config loads the bookshop configuration from an optional YAML file
// and the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3
	DriverSQLite  = "sqlite"  // modernc.org/sqlite
)

const (
	UndatedSkip   = "skip"
	UndatedReject = "reject"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	LogLevel string         `yaml:"log_level"`
	// UndatedPolicy decides what date based queries do with books that have
	// no release date: "skip" them or "reject" the query.
	UndatedPolicy string `yaml:"undated_policy"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	Path            string `yaml:"path"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a duration.
func (c DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverSQLite3,
			Path:            "bookshop.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 300,
		},
		LogLevel:      "info",
		UndatedPolicy: UndatedSkip,
	}
}

// Load reads path when it is not empty, fills in defaults and applies the
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.applyDefaults()
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = def.Database.MaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = def.Database.ConnMaxLifetime
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.UndatedPolicy == "" {
		c.UndatedPolicy = def.UndatedPolicy
	}
}

func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("BOOKSHOP_DB_DRIVER", c.Database.Driver)
	c.Database.Path = getEnv("BOOKSHOP_DB_PATH", c.Database.Path)
	c.Database.MaxOpenConns = getEnvInt("BOOKSHOP_DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("BOOKSHOP_DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvInt("BOOKSHOP_DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)
	c.LogLevel = getEnv("BOOKSHOP_LOG_LEVEL", c.LogLevel)
	c.UndatedPolicy = getEnv("BOOKSHOP_UNDATED_POLICY", c.UndatedPolicy)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite3, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown database driver %q", ErrInvalid, c.Database.Driver))
	}
	if c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("%w: database path is empty", ErrInvalid))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("%w: connection limits must not be negative", ErrInvalid))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.UndatedPolicy {
	case UndatedSkip, UndatedReject:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown undated policy %q", ErrInvalid, c.UndatedPolicy))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalid, level)
	}
	return l, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
