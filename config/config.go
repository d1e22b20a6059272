package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	App     AppConfig
	Billing BillingConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConfig struct {
	DSN      string
	MaxConns int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

// BillingConfig holds the billing-engine knobs. NumberAttempts bounds the
// allocate-and-insert retry loop for invoice number assignment; retries are
// immediate, with no backoff.
type BillingConfig struct {
	NumberAttempts int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		DB: DBConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Billing: BillingConfig{
			NumberAttempts: getEnvAsInt("BILLING_NUMBER_ATTEMPTS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Billing.NumberAttempts < 1 {
		return fmt.Errorf("BILLING_NUMBER_ATTEMPTS must be at least 1")
	}

	return nil
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
