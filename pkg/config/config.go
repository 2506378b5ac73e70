package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	Debug   bool
	Port    string

	// Logging
	LogLevel string
	LogJSON  bool

	// Database
	DatabaseType string // "sqlite" (default) or "postgres"
	DatabasePath string // sqlite file location; empty = <app-data>/rogame.db
	DatabaseURL  string // postgres DSN

	// Save-location knowledge base
	SaveConfigPath string // empty = save_game_location.json next to the binary

	// Filesystem overrides, mainly for containerized or test runs
	DataDir   string // empty = platform local-data dir
	BackupDir string // empty = <data-dir>/rogame/saves
}

// Load loads configuration from environment
func Load() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	return &Config{
		AppName:        getEnv("APP_NAME", "rogame"),
		Debug:          getEnvBool("DEBUG", false),
		Port:           getEnv("PORT", "8730"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		LogJSON:        getEnvBool("LOG_JSON", false),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DATABASE_PATH", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SaveConfigPath: getEnv("SAVE_CONFIG_PATH", "save_game_location.json"),
		DataDir:        getEnv("DATA_DIR", ""),
		BackupDir:      getEnv("BACKUP_DIR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Invalid boolean for %s, using default: %v", key, defaultValue)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}
