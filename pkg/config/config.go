package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration.
// Only this package reads the environment.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig
	Ingest   IngestConfig
	Analysis AnalysisConfig
	Schedule ScheduleConfig

	// SecretsFile points at the TOML file with credentials and site settings
	SecretsFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL settings. Credentials live in the secrets
// file; URL is an optional override used by tests and local tooling.
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// IngestConfig controls pacing and termination of the ingestors.
type IngestConfig struct {
	HTTPTimeout              time.Duration
	FTDelay                  time.Duration
	NvidiaDelay              time.Duration
	FinnhubDelay             time.Duration
	MaxPages                 int
	MaxConsecutiveFailures   int
	FinnhubRequestsPerMinute int
}

// AnalysisConfig controls result caching.
type AnalysisConfig struct {
	CacheTTL time.Duration
}

// ScheduleConfig controls the background ingestion job.
type ScheduleConfig struct {
	Enabled      bool
	LookbackDays int
	Cron         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", "5s"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Ingest: IngestConfig{
			HTTPTimeout:              getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			FTDelay:                  getEnvAsDuration("FT_DELAY", "1s"),
			NvidiaDelay:              getEnvAsDuration("NVIDIA_DELAY", "2s"),
			FinnhubDelay:             getEnvAsDuration("FINNHUB_DELAY", "2s"),
			MaxPages:                 getEnvAsInt("SCRAPE_MAX_PAGES", 200),
			MaxConsecutiveFailures:   getEnvAsInt("SCRAPE_MAX_CONSECUTIVE_FAILURES", 3),
			FinnhubRequestsPerMinute: getEnvAsInt("FINNHUB_REQUESTS_PER_MINUTE", 60),
		},

		Analysis: AnalysisConfig{
			CacheTTL: getEnvAsDuration("ANALYSIS_CACHE_TTL", "10m"),
		},

		Schedule: ScheduleConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", false),
			LookbackDays: getEnvAsInt("SCHEDULER_LOOKBACK_DAYS", 3),
			Cron:         getEnv("SCHEDULER_CRON", "0 30 22 * * MON-FRI"),
		},

		SecretsFile: getEnv("SECRETS_FILE", filepath.Join(".secrets", "keys.toml")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Ingest.MaxPages < 1 {
		return fmt.Errorf("SCRAPE_MAX_PAGES must be positive")
	}

	if c.Ingest.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("SCRAPE_MAX_CONSECUTIVE_FAILURES must be positive")
	}

	if c.Schedule.LookbackDays < 1 {
		return fmt.Errorf("SCHEDULER_LOOKBACK_DAYS must be positive")
	}

	return nil
}

// loadEnvFile loads the first .env found; later paths are fallbacks.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

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
