// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	AI          AIConfig
	Canvas      CanvasConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type StorageConfig struct {
	DataDir string
}

type AIConfig struct {
	APIKey         string
	ImageModel     string
	TextModel      string
	RequestTimeout int // in seconds
}

type CanvasConfig struct {
	Size            float64 // canvas space is Size x Size
	DefaultItemSize float64
	MinItemSize     float64
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 60),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		AI: AIConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			ImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
			TextModel:      getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
			RequestTimeout: getEnvAsInt("GEMINI_REQUEST_TIMEOUT", 300),
		},
		Canvas: CanvasConfig{
			Size:            getEnvAsFloat("CANVAS_SIZE", 1200),
			DefaultItemSize: getEnvAsFloat("CANVAS_DEFAULT_ITEM_SIZE", 200),
			MinItemSize:     getEnvAsFloat("CANVAS_MIN_ITEM_SIZE", 50),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Canvas.Size <= 0 {
		return fmt.Errorf("canvas size must be positive")
	}
	if c.Canvas.MinItemSize <= 0 || c.Canvas.MinItemSize > c.Canvas.DefaultItemSize {
		return fmt.Errorf("minimum item size must be positive and at most the default size")
	}
	if c.Canvas.DefaultItemSize > c.Canvas.Size {
		return fmt.Errorf("default item size cannot exceed the canvas size")
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
