package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DataPath     string
	ModelPath    string
	ReportDir    string
	LogLevel     string
	TopN         int
	DevMode      bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./data/pipeline.db"),
		DataPath:     getEnv("DATA_PATH", "./data/sales_data.csv"),
		ModelPath:    getEnv("MODEL_PATH", "./data/driver_model.msgpack"),
		ReportDir:    getEnv("REPORT_DIR", "./reports"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		TopN:         getEnvAsInt("TOP_N", 10),
		DevMode:      getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.TopN < 1 {
		return fmt.Errorf("TOP_N must be at least 1, got %d", c.TopN)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
