package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime settings, loaded from the environment with an
// optional .env file.
type Config struct {
	Port            string
	DataDir         string
	LogLevel        string
	MaxUploadSizeMB int
}

// Load reads configuration. Every value has a sensible default, so a
// bare environment works out of the box.
func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8080"),
		DataDir:         getEnv("DATA_DIR", "data"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeMB: getEnvInt("MAX_UPLOAD_MB", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
