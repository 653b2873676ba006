package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Pipeline
	Pipeline PipelineConfig

	// Database (daily-bar cache)
	Database DatabaseConfig

	// Redis (provider-side quote cache)
	Redis RedisConfig

	// Market data providers
	Provider ProviderConfig

	// Scheduled batch runs
	Schedule ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

// PipelineConfig holds batch-run settings.
type PipelineConfig struct {
	Workers           int
	RunTimeout        time.Duration
	IndicatorConfig   string // path to the indicator spec YAML
	OutputDir         string
	CapitalFlowThresh float64
}

// DatabaseConfig holds PostgreSQL configuration for the bar store.
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds market data source settings.
type ProviderConfig struct {
	Source      string // rest, html, csv
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	RateLimit   int // requests per second
	CSVDir      string
	CacheEnable bool
}

// ScheduleConfig holds cron settings for the daily batch.
type ScheduleConfig struct {
	Enabled   bool
	DailyCron string // cron spec for the post-close batch
	Symbols   []string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Pipeline: PipelineConfig{
			Workers:           getEnvAsInt("PIPELINE_WORKERS", 8),
			RunTimeout:        getEnvAsDuration("PIPELINE_RUN_TIMEOUT", "10m"),
			IndicatorConfig:   getEnv("INDICATOR_CONFIG", "configs/indicators.yaml"),
			OutputDir:         getEnv("OUTPUT_DIR", "out"),
			CapitalFlowThresh: getEnvAsFloat("CAPITAL_FLOW_THRESHOLD", 0.05),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Provider: ProviderConfig{
			Source:      getEnv("PROVIDER_SOURCE", "csv"),
			BaseURL:     getEnv("PROVIDER_BASE_URL", ""),
			UserAgent:   getEnv("PROVIDER_USER_AGENT", "stocklens/1.0"),
			Timeout:     getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			RateLimit:   getEnvAsInt("PROVIDER_RATE_LIMIT", 5),
			CSVDir:      getEnv("PROVIDER_CSV_DIR", "data"),
			CacheEnable: getEnvAsBool("PROVIDER_CACHE", false),
		},

		Schedule: ScheduleConfig{
			Enabled:   getEnvAsBool("SCHEDULE_ENABLED", false),
			DailyCron: getEnv("SCHEDULE_DAILY_CRON", "30 16 * * 1-5"),
			Symbols:   getEnvAsSlice("SCHEDULE_SYMBOLS", nil),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_ENABLED=true")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	switch c.Provider.Source {
	case "rest", "html", "csv":
	default:
		return fmt.Errorf("PROVIDER_SOURCE must be one of: rest, html, csv")
	}

	if (c.Provider.Source == "rest" || c.Provider.Source == "html") && c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL is required for source %q", c.Provider.Source)
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"../.env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
