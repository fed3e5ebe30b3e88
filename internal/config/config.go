package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sunshinelabs/sunshined/internal/weather"
)

type AppConfig struct {
	// Forecast endpoint.
	APIKey  string
	BaseURL string

	// ForecastDays is the cnt query parameter: how many days to request.
	ForecastDays int

	// SyncInterval controls how often the scheduler refreshes the cache.
	SyncInterval time.Duration

	// HTTPTimeout applies to outbound provider calls.
	HTTPTimeout time.Duration

	// Location is the initial tracked location; it becomes mutable through
	// Preferences once the app is running.
	Location weather.Location

	// GeocoderAPIKey enables place-name to lat/lon resolution. Optional.
	GeocoderAPIKey string

	DBPath string
	Port   string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("OWM_API_KEY")
	cfg.BaseURL = getenvDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/forecast/daily")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 14)
	if cfg.ForecastDays <= 0 {
		return nil, fmt.Errorf("FORECAST_DAYS must be positive")
	}

	intervalStr := getenvDefault("SYNC_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	cfg.SyncInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.Port = getenvDefault("PORT", "8080")

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	return cfg, nil
}

// loadLocation reads the tracked location. A place name is required;
// coordinates are optional and must come as a lat/lon pair.
func loadLocation() (weather.Location, error) {
	loc := weather.Location{
		Name: getenvDefault("WEATHER_LOCATION", "London,UK"),
	}

	latStr := os.Getenv("WEATHER_LAT")
	lonStr := os.Getenv("WEATHER_LON")
	if latStr == "" && lonStr == "" {
		return loc, nil
	}
	if latStr == "" || lonStr == "" {
		return loc, fmt.Errorf("WEATHER_LAT and WEATHER_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return loc, fmt.Errorf("invalid WEATHER_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return loc, fmt.Errorf("invalid WEATHER_LON: %w", err)
	}

	loc.Lat = &lat
	loc.Lon = &lon
	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
