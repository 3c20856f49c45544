package config

import (
	"fmt"
	"log"
	"os"

	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiModel        string `env:"GEMINI_MODEL" default:"gemini-1.5-flash-latest"`
	DatabaseURL        string `env:"DATABASE_URL" default:"calcount.db"`
	HTTPPort           string `env:"HTTP_PORT" default:"8080"`
	LogLevel           string `env:"LOG_LEVEL" default:"INFO"`
	MaxUploadMB        int    `env:"MAX_UPLOAD_MB" default:"10"`
	InBodyHistoryLimit int    `env:"INBODY_HISTORY_LIMIT" default:"10"`
}

var AppConfig Config

// LoadConfig reads .env (if present), an optional config file named by
// CALCOUNT_CONFIG, and the process environment into AppConfig.
func LoadConfig() error {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var files []string
	if path := getEnv("CALCOUNT_CONFIG", ""); path != "" {
		files = append(files, path)
	}

	cfg := Config{}
	if err := configor.New(&configor.Config{ENVPrefix: "-"}).Load(&cfg, files...); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.InBodyHistoryLimit <= 0 {
		cfg.InBodyHistoryLimit = 10
	}

	AppConfig = cfg
	return nil
}

// RequireGemini fails when the AI collaborator cannot be reached.
func (c Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	return nil
}

func (c Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
