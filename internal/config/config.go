package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Dataset storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type AppConfig struct {
	// AccuWeather access.
	AccuWeatherAPIKey  string
	AccuWeatherBaseURL string
	AccuWeatherLang    string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Dataset storage.
	DatasetBackend  string // file | redis | memory
	DatasetFile     string
	RedisAddr       string
	DatasetRedisKey string

	// RefreshInterval controls the background re-aggregation of the last
	// route. Zero disables it.
	RefreshInterval time.Duration

	// DashboardURL is what conversation summaries point users at.
	DashboardURL string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.AccuWeatherAPIKey = os.Getenv("ACCUWEATHER_API_KEY")
	cfg.AccuWeatherBaseURL = getenvDefault("ACCUWEATHER_BASE_URL", "http://dataservice.accuweather.com")
	cfg.AccuWeatherLang = getenvDefault("ACCUWEATHER_LANGUAGE", "en-us")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DatasetBackend = getenvDefault("DATASET_BACKEND", BackendFile)
	switch cfg.DatasetBackend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid DATASET_BACKEND %q", cfg.DatasetBackend)
	}

	cfg.DatasetFile = getenvDefault("DATASET_FILE", "weather_forecast.csv")
	cfg.RedisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.DatasetRedisKey = os.Getenv("DATASET_REDIS_KEY")

	refreshStr := getenvDefault("REFRESH_INTERVAL", "0")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DashboardURL = getenvDefault("DASHBOARD_URL", "http://localhost:"+cfg.Port+"/dashboard")

	return cfg, nil
}

// NewLogger builds the process-wide sugared logger. Services receive it as an
// explicit dependency rather than reaching for a package global.
func NewLogger() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
