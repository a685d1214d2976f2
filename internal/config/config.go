// Package config reads application configuration from environment
// variables, with a .env file as an optional local override.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string  // Base directory for the cache database
	Port           int     // HTTP listen port
	LogLevel       string  // zerolog level name
	DevMode        bool    // pretty console logging
	RiskFreeRate   float64 // annualized, used when a request does not supply one
	PricingSteps   int     // default lattice steps for the tree model
	PricingPaths   int     // default path count for Monte Carlo
	AnalysisBins   int     // payoff curve resolution
	CachePurgeCron string  // schedule for the cache maintenance job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		// Check ./data first, fall back to ../data (when running from cmd/)
		if _, err := os.Stat("./data"); err == nil {
			dataDir = "./data"
		} else {
			dataDir = "../data"
		}
	}

	cfg := &Config{
		DataDir:        dataDir,
		Port:           getEnvAsInt("PORT", 8001),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:   getEnvAsFloat("RISK_FREE_RATE", 0.05),
		PricingSteps:   getEnvAsInt("PRICING_STEPS", 100),
		PricingPaths:   getEnvAsInt("PRICING_PATHS", 10000),
		AnalysisBins:   getEnvAsInt("ANALYSIS_BINS", 200),
		CachePurgeCron: getEnv("CACHE_PURGE_CRON", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RiskFreeRate < -1 || c.RiskFreeRate > 1 {
		return fmt.Errorf("risk-free rate %v out of range", c.RiskFreeRate)
	}
	if c.PricingSteps <= 0 {
		return fmt.Errorf("pricing steps must be positive, got %d", c.PricingSteps)
	}
	if c.PricingPaths <= 0 {
		return fmt.Errorf("pricing paths must be positive, got %d", c.PricingPaths)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
