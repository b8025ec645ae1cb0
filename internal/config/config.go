// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cv-creator/internal/domain"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	_ "github.com/joho/godotenv/autoload"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the process configuration.
type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store StoreConfig

	// ChromePath overrides the browser executable used for PDF printing.
	ChromePath string `env:"CHROME_PATH"`
	OutputDir  string `env:"OUTPUT_DIR" envDefault:"."`

	DefaultLocale   string `env:"DEFAULT_LOCALE" envDefault:"en-US"`
	DefaultTemplate string `env:"DEFAULT_TEMPLATE" envDefault:"classic"`
	DefaultColor    string `env:"DEFAULT_COLOR" envDefault:"blue"`

	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"30s"`
	AutosaveDebounce time.Duration `env:"AUTOSAVE_DEBOUNCE" envDefault:"1s"`

	// LabelsServiceURL is the chat endpoint used to translate labels for
	// locales without a bundled catalog. Empty disables it.
	LabelsServiceURL string `env:"LABELS_SERVICE_URL"`
}

// StoreConfig selects and configures the version store backend.
type StoreConfig struct {
	Backend       string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"cv-creator.db"`
	PostgresURL   string `env:"VERSIONS_DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.DefaultTemplate, validation.Required, validation.By(func(v any) error {
			_, err := domain.ParseTemplate(v.(string))
			return err
		})),
		validation.Field(&c.DefaultColor, validation.Required, validation.By(func(v any) error {
			_, err := domain.ParseColor(v.(string))
			return err
		})),
		validation.Field(&c.AutosaveInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.AutosaveDebounce, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.LabelsServiceURL, is.URL),
	); err != nil {
		return err
	}
	return c.Store.Validate()
}

func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendSQLite, BackendPostgres, BackendRedis)),
		validation.Field(&c.SQLitePath, validation.When(c.Backend == BackendSQLite, validation.Required)),
		validation.Field(&c.PostgresURL, validation.When(c.Backend == BackendPostgres, validation.Required)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == BackendRedis, validation.Required)),
	)
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// SessionDefaults is the presentation context new sessions start with.
func (c *Config) SessionDefaults() domain.SessionContext {
	t, _ := domain.ParseTemplate(c.DefaultTemplate)
	col, _ := domain.ParseColor(c.DefaultColor)
	return domain.NewSessionContext(t, col, c.DefaultLocale)
}
