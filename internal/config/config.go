// Package config loads application configuration from the environment.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server
	Port string
	Env  string

	// Budget backend
	BackendURL     string
	BackendTimeout time.Duration

	// Budget list page size
	PageSize int
}

// Load reads configuration from environment variables, with a .env file as an
// optional source.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:       getEnv("PORT", "4200"),
		Env:        getEnv("ENV", "development"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:8088"),
		PageSize:   20,
	}

	timeoutStr := getEnv("BACKEND_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid BACKEND_TIMEOUT value '%s', falling back to 15s\n", timeoutStr)
		timeout = 15 * time.Second
	}
	cfg.BackendTimeout = timeout

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
