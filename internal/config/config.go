package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config holds application configuration sourced from environment variables
// and an optional config.yaml.
type Config struct {
	Env           string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	DBPath        string `mapstructure:"DB_PATH"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
	LogFilePath   string `mapstructure:"LOG_FILE_PATH"`

	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`

	GeoapifyAPIKey string  `mapstructure:"GEOAPIFY_API_KEY"`
	DefaultMileage float64 `mapstructure:"DEFAULT_MILEAGE"`

	NatsURL       string `mapstructure:"NATS_URL"`
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender    string `mapstructure:"SMTP_SENDER"`
	CallbackEmail string `mapstructure:"CALLBACK_EMAIL"`
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// Load reads .env and config.yaml from the working directory, then the
// environment, and returns a validated Config.
func Load() (Config, error) {
	return load(".")
}

func load(dir string) (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(filepath.Join(dir, ".env"))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "./dev.db")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("LOG_FILE_PATH", "logs/app.log")
	v.SetDefault("SESSION_BACKEND", SessionBackendSQLite)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("GEOAPIFY_API_KEY", "")
	v.SetDefault("DEFAULT_MILEAGE", 0)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER", "")
	v.SetDefault("CALLBACK_EMAIL", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.SessionBackend {
	case SessionBackendSQLite, SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("SESSION_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.DefaultMileage < 0 {
		return fmt.Errorf("DEFAULT_MILEAGE must not be negative")
	}
	return nil
}
