package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

// Config holds application configuration
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	RedisAddr   string        `yaml:"redis_addr"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	DatabaseURL string        `yaml:"database_url"`

	OpenAIKey   string `yaml:"openai_api_key"`
	OpenAIURL   string `yaml:"openai_url"`
	OpenAIModel string `yaml:"openai_model"`

	RateLimitCapacity int           `yaml:"rate_limit_capacity"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
	TrustProxy        bool          `yaml:"trust_proxy"`

	HistoryRetention     time.Duration `yaml:"history_retention"`
	HistoryPruneSchedule string        `yaml:"history_prune_schedule"`

	CurrencySymbol string `yaml:"currency_symbol"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:                 "8080",
		LogLevel:             "info",
		CacheTTL:             time.Hour,
		OpenAIURL:            "https://api.openai.com/v1/chat/completions",
		OpenAIModel:          "gpt-4o-mini",
		RateLimitCapacity:    30,
		RateLimitWindow:      time.Minute,
		HistoryRetention:     30 * 24 * time.Hour,
		HistoryPruneSchedule: "0 3 * * *",
		CurrencySymbol:       "₹",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// GOALCALC_CONFIG (or config.yaml when present), then .env, then the
// environment.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("GOALCALC_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env file")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIURL = getEnv("OPENAI_URL", c.OpenAIURL)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.HistoryPruneSchedule = getEnv("HISTORY_PRUNE_SCHEDULE", c.HistoryPruneSchedule)
	c.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.CurrencySymbol)

	var err error
	if c.CacheTTL, err = getDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow); err != nil {
		return err
	}
	if c.HistoryRetention, err = getDuration("HISTORY_RETENTION", c.HistoryRetention); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("TRUST_PROXY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY must be a boolean: %w", err)
		}
		c.TrustProxy = b
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_CAPACITY must be an integer: %w", err)
		}
		c.RateLimitCapacity = n
	}
	return nil
}

// Validate checks the values that would make the service unusable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.RateLimitCapacity <= 0 {
		return fmt.Errorf("rate limit capacity must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if c.HistoryRetention <= 0 {
		return fmt.Errorf("history retention must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
