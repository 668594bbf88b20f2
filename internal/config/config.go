// Package config loads the relay configuration from the process environment.
// Values are read once at startup and are never mutated afterwards.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/edgard/tgrelay/internal/errors"
)

// Defaults for optional settings.
const (
	DefaultPort            = 8000
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultShutdownTimeout = 10 * time.Second
)

// envKeys maps configuration keys to the environment variables they are read from.
var envKeys = map[string]string{
	"telegram.token":          "TELEGRAM_TOKEN",
	"telegram.api_url":        "TELEGRAM_API_URL",
	"server.port":             "PORT",
	"server.shutdown_timeout": "SHUTDOWN_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
}

// Config holds the complete relay configuration.
type Config struct {
	Telegram TelegramConfig
	Server   ServerConfig
	Logger   LoggerConfig
}

// TelegramConfig holds the bot credential and the Bot API endpoint.
type TelegramConfig struct {
	Token  string `validate:"required"`
	APIURL string `validate:"required,url"`
}

// ServerConfig holds the inbound HTTP listener settings.
type ServerConfig struct {
	Port            int           `validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `validate:"min=1s,max=5m"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

// JSON reports whether logs should be emitted as JSON.
func (c LoggerConfig) JSON() bool {
	return c.Format == "json"
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadConfig reads the configuration from the environment, optionally seeded
// from a .env file in the working directory. A missing TELEGRAM_TOKEN is a
// fatal ConfigError. An absent or unusable PORT silently falls back to
// DefaultPort.
func LoadConfig() (*Config, error) {
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	v := viper.New()
	v.SetDefault("telegram.api_url", DefaultTelegramAPIURL)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to bind %s", env), err)
		}
	}

	token := v.GetString("telegram.token")
	if token == "" {
		return nil, errors.NewConfigError("TELEGRAM_TOKEN is not set", nil)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:  token,
			APIURL: strings.TrimRight(v.GetString("telegram.api_url"), "/"),
		},
		Server: ServerConfig{
			Port:            parsePort(v.GetString("server.port")),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	return cfg, nil
}

// parsePort returns the port number in raw, or DefaultPort if raw is empty
// or not a valid TCP port.
func parsePort(raw string) int {
	port, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil || port == 0 {
		return DefaultPort
	}
	return int(port)
}
