package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	// Asia/Yangon must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/kyat/internal/database"
)

type Config struct {
	App struct {
		Name     string     `envconfig:"APP_NAME" default:"Kyat"`
		Port     int        `envconfig:"PORT" default:"8080"`
		LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
		// Timezone is the zone whose wall clock entries are recorded in.
		Timezone string `envconfig:"APP_TIMEZONE" default:"Asia/Yangon"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
		Path     string `envconfig:"DB_PATH" default:"kyat.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"kyat"`
	}

	Session struct {
		Secret string        `envconfig:"SESSION_SECRET"`
		TTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
		Secure bool          `envconfig:"SESSION_SECURE" default:"false"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Export struct {
		FontPath   string   `envconfig:"EXPORT_FONT_PATH"`
		FontDirs   []string `envconfig:"EXPORT_FONT_DIRS"`
		PDFEnabled bool     `envconfig:"EXPORT_PDF_ENABLED" default:"true"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"kyat.ledger"`
	}
}

func (c *Config) Dialect() (database.Dialect, error) {
	return database.ParseDialect(c.DB.Driver)
}

// Location resolves App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if d, err := c.Dialect(); err == nil && d == database.Postgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
	}

	return database.SQLiteDSN(c.DB.Path)
}

// LoadDatabase reads the configuration without requiring the HTTP session
// settings. The admin CLI uses it.
func LoadDatabase() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.Dialect(); err != nil {
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Load() (*Config, error) {
	cfg, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Session.Secret) == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}
