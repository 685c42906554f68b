package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"

	defaultSecretKey   = "change-this-in-production"
	defaultDatabaseURL = "sqlite://data/library.sqlite"
	inMemoryDatabase   = "sqlite://:memory:"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, testing, production
	Port        string
	Version     string
	SecretKey   string
	LogLevel    string

	// ProcessingImageURL is an optional external image-processing endpoint.
	ProcessingImageURL string

	// TrustedProxies lists the peers (IPs or CIDRs) whose forwarding headers
	// identify the client. Empty means the socket peer is the client.
	TrustedProxies []string
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig is optional. An empty Addr keeps rate limiting in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	RecommendLimit  int
	RecommendWindow time.Duration
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Library API"),
			Environment:        getEnv("APP_ENV", EnvDevelopment),
			Port:               getEnv("APP_PORT", "5002"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			SecretKey:          getEnv("SECRET_KEY", defaultSecretKey),
			LogLevel:           getEnv("LOG_LEVEL", ""),
			ProcessingImageURL: getEnv("PROCESSING_IMAGE_URL", ""),
			TrustedProxies:     getEnvList("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", defaultDatabaseURL),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("DB_CONN_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AI: AIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout: getEnvDuration("AI_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			RecommendLimit:  getEnvInt("RECOMMEND_RATE_LIMIT", 3),
			RecommendWindow: getEnvDuration("RECOMMEND_RATE_WINDOW", time.Minute),
		},
	}

	cfg.applyProfile()

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyProfile enforces the per-environment overrides.
func (c *Config) applyProfile() {
	if c.App.Environment == EnvTesting {
		c.Database.URL = inMemoryDatabase
		c.AI.APIKey = ""
	}
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.App.Environment)
	}

	if c.App.Environment == EnvProduction && c.App.SecretKey == defaultSecretKey {
		return fmt.Errorf("SECRET_KEY must be set in production")
	}
	for _, p := range c.App.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
	}
	if c.RateLimit.RecommendLimit <= 0 {
		return fmt.Errorf("RECOMMEND_RATE_LIMIT must be positive")
	}
	if c.RateLimit.RecommendWindow <= 0 {
		return fmt.Errorf("RECOMMEND_RATE_WINDOW must be positive")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}

	return nil
}

// AIConfigured reports whether recommendations can reach the AI provider.
func (c *Config) AIConfigured() bool {
	return c.AI.APIKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
