// Package config provides application configuration management.
// Environment variables (with optional .env file) carry service settings;
// the default search plan is loaded from a JSON file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Amadeus  AmadeusConfig
	Telegram TelegramConfig
	Watch    WatchConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
}

// AmadeusConfig holds pricing provider credentials and endpoint.
type AmadeusConfig struct {
	BaseURL      string `env:"AMADEUS_BASE_URL" envDefault:"https://test.api.amadeus.com"`
	ClientID     string `env:"AMADEUS_CLIENT_ID"`
	ClientSecret string `env:"AMADEUS_CLIENT_SECRET"`
}

// TelegramConfig holds bot settings. An empty token disables notifications.
type TelegramConfig struct {
	BaseURL string `env:"TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`
	Token   string `env:"TELEGRAM_BOT_TOKEN"`

	// ChatID receives summaries for runs not started from a chat (the
	// one-shot CLI and the trigger endpoint)
	ChatID int64 `env:"TELEGRAM_CHAT_ID"`
}

// WatchConfig holds search run tuning.
type WatchConfig struct {
	// Workers is the candidate query pool size
	Workers int `env:"WATCH_WORKERS" envDefault:"2"`

	// QueryBudget is the time reserve required to dispatch one more
	// candidate
	QueryBudget time.Duration `env:"WATCH_QUERY_BUDGET" envDefault:"15s"`

	// RunTimeout bounds one full run end to end
	RunTimeout time.Duration `env:"WATCH_RUN_TIMEOUT" envDefault:"10m"`

	// PaceInterval is the minimum spacing between provider calls
	PaceInterval time.Duration `env:"WATCH_PACE_INTERVAL" envDefault:"500ms"`

	// PlanPath is the JSON file holding the default search plan
	PlanPath string `env:"WATCH_PLAN_PATH" envDefault:"config.json"`
}

// RedisConfig holds the offer cache connection. An empty address disables
// caching.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first (optional - won't fail if missing).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics on error.
// Use this in main() where configuration is required to start.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// validate checks configuration values for correctness.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	if cfg.Watch.Workers < 1 {
		return fmt.Errorf("WATCH_WORKERS must be at least 1, got %d", cfg.Watch.Workers)
	}
	if cfg.Watch.QueryBudget <= 0 {
		return fmt.Errorf("WATCH_QUERY_BUDGET must be positive")
	}
	if cfg.Watch.RunTimeout <= 0 {
		return fmt.Errorf("WATCH_RUN_TIMEOUT must be positive")
	}
	if cfg.Watch.PaceInterval <= 0 {
		return fmt.Errorf("WATCH_PACE_INTERVAL must be positive")
	}
	if cfg.Watch.QueryBudget >= cfg.Watch.RunTimeout {
		return fmt.Errorf("WATCH_QUERY_BUDGET (%s) should be less than WATCH_RUN_TIMEOUT (%s)",
			cfg.Watch.QueryBudget, cfg.Watch.RunTimeout)
	}

	if cfg.Redis.Addr != "" && cfg.Redis.TTL <= 0 {
		return fmt.Errorf("REDIS_TTL must be positive when REDIS_ADDR is set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console; got %q", cfg.Logging.Format)
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[cfg.App.Env] {
		return fmt.Errorf("APP_ENV must be one of: development, staging, production; got %q", cfg.App.Env)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
