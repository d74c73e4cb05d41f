package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Client    ClientConfig
	Telemetry TelemetryConfig
	Mock      MockConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	Debug       bool // decorate surfaced errors with status, operation and notes
}

type ClientConfig struct {
	APIURL             string
	SearchPageSize     int
	SearchHistoryLimit int
	PreviewLines       int
}

type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

type MockConfig struct {
	Port      string
	JWTSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "knaxim-client.log"),
			Debug:       getEnvAsBool("KNAXIM_DEBUG", false),
		},
		Client: ClientConfig{
			APIURL:             getEnv("KNAXIM_API_URL", "http://localhost:8000/api"),
			SearchPageSize:     getEnvAsInt("SEARCH_PAGE_SIZE", 100),
			SearchHistoryLimit: getEnvAsInt("SEARCH_HISTORY_LIMIT", 10),
			PreviewLines:       getEnvAsInt("PREVIEW_LINES", 3),
		},
		Telemetry: TelemetryConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Mock: MockConfig{
			Port:      getEnv("MOCK_PORT", "8000"),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
