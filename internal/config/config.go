package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alanya-store/order-notifier/internal/models"
)

// Config holds all configuration for the application.
// Values come from an optional YAML file and are overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	LogLevel string         `yaml:"logLevel"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	Host            string `yaml:"host"`
	ReadTimeout     int    `yaml:"readTimeout"`
	WriteTimeout    int    `yaml:"writeTimeout"`
	ShutdownTimeout int    `yaml:"shutdownTimeout"`
}

// TelegramConfig describes the Bot API endpoint and the delivery target.
// Token and chat id may be empty at startup; requests then fail with a configuration error.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	APIBaseURL string `yaml:"apiBaseURL"`
	TimeoutSec int    `yaml:"timeoutSec"`
}

const (
	DefaultTelegramAPIBaseURL = "https://api.telegram.org"
	DefaultTelegramTimeoutSec = 5
)

// RequestTimeout bounds the handling of one inbound request
const RequestTimeout = 60 * time.Second

// Timeout returns the outbound call timeout
func (c TelegramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Target returns the delivery target described by the config
func (c TelegramConfig) Target() models.DeliveryTarget {
	return models.DeliveryTarget{
		BotToken: c.BotToken,
		ChatID:   c.ChatID,
	}
}

// Load reads configuration from the YAML file named by CONFIG_FILE (if set)
// and then from environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 30,
		},
		Telegram: TelegramConfig{
			APIBaseURL: DefaultTelegramAPIBaseURL,
			TimeoutSec: DefaultTelegramTimeoutSec,
		},
		LogLevel: "info",
	}
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvAsInt("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
	c.Telegram.APIBaseURL = getEnv("TELEGRAM_API_URL", c.Telegram.APIBaseURL)
	c.Telegram.TimeoutSec = getEnvAsInt("TELEGRAM_TIMEOUT", c.Telegram.TimeoutSec)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Telegram.TimeoutSec <= 0 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be positive, got %d", c.Telegram.TimeoutSec)
	}

	// The outbound call must finish while the error response can still be written
	if c.Server.WriteTimeout > 0 && c.Telegram.TimeoutSec >= c.Server.WriteTimeout {
		return fmt.Errorf("TELEGRAM_TIMEOUT (%ds) must be less than WRITE_TIMEOUT (%ds)",
			c.Telegram.TimeoutSec, c.Server.WriteTimeout)
	}
	if c.Telegram.Timeout() >= RequestTimeout {
		return fmt.Errorf("TELEGRAM_TIMEOUT (%ds) must be less than the request timeout (%v)",
			c.Telegram.TimeoutSec, RequestTimeout)
	}

	u, err := url.Parse(c.Telegram.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid TELEGRAM_API_URL: %q", c.Telegram.APIBaseURL)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
