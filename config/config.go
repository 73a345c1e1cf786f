package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort            string `mapstructure:"APP_PORT"`
	Env                string `mapstructure:"ENV"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin  int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Storage. STORAGE_DRIVER picks the backend: mongo, postgres, sqlite or memory.
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	// Redis configuration. Empty REDIS_ADDR disables the distributed day lock
	// and the notification queue.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int           `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	DayLockTTL    time.Duration `mapstructure:"DAY_LOCK_TTL"`

	// Day buckets for the one-booking-per-day rule are computed in this zone.
	Timezone string `mapstructure:"TIMEZONE"`

	// Mail.
	BusinessName  string        `mapstructure:"BUSINESS_NAME"`
	SMTPHost      string        `mapstructure:"SMTP_HOST"`
	SMTPPort      int           `mapstructure:"SMTP_PORT"`
	SMTPUsername  string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string        `mapstructure:"SMTP_PASSWORD"`
	MailFrom      string        `mapstructure:"MAIL_FROM"`
	AdminEmail    string        `mapstructure:"ADMIN_EMAIL"`
	NotifyTimeout time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
	NotifyMode    string        `mapstructure:"NOTIFY_MODE"`

	CompletionSweepSpec string `mapstructure:"COMPLETION_SWEEP_SPEC"`

	location *time.Location
}

var configKeys = map[string]any{
	"APP_PORT":              "8080",
	"ENV":                   "development",
	"LOG_LEVEL":             "info",
	"MAX_REQUESTS_PER_MIN":  100,
	"CORS_ALLOWED_ORIGINS":  "http://localhost:3000",
	"STORAGE_DRIVER":        "mongo",
	"DATABASE_URL":          "mongodb://localhost:27017",
	"DATABASE_NAME":         "decor",
	"POSTGRES_DSN":          "",
	"SQLITE_PATH":           "decor.db",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_LOCK_DB":         0,
	"REDIS_QUEUE_DB":        1,
	"DAY_LOCK_TTL":          "5s",
	"TIMEZONE":              "Asia/Kolkata",
	"BUSINESS_NAME":         "Sonu Tent & Decoration",
	"SMTP_HOST":             "",
	"SMTP_PORT":             587,
	"SMTP_USERNAME":         "",
	"SMTP_PASSWORD":         "",
	"MAIL_FROM":             "",
	"ADMIN_EMAIL":           "",
	"NOTIFY_TIMEOUT":        "10s",
	"NOTIFY_MODE":           "direct",
	"COMPLETION_SWEEP_SPEC": "@daily",
}

// Load reads config.yaml from the working directory or ./config when present,
// then lets environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, def := range configKeys {
		v.SetDefault(key, def)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case "mongo", "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
	}

	c.NotifyMode = strings.ToLower(strings.TrimSpace(c.NotifyMode))
	switch c.NotifyMode {
	case "direct":
	case "queue":
		if c.RedisAddr == "" {
			return errors.New("NOTIFY_MODE=queue needs REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_MODE %q", c.NotifyMode)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.NotifyTimeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

// Location is the reference timezone for event days.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ExposeErrorDetail reports whether error causes may be echoed to clients.
// Only a development environment does.
func (c *Config) ExposeErrorDetail() bool {
	return c.Env == "development"
}

// SMTPEnabled reports whether outgoing mail can be delivered.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
