package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// AppConfig is the process configuration, loaded from the environment.
type AppConfig struct {
	// Provider credentials.
	OpenWeatherAPIKey string
	YandexAPIKey      string

	// ProviderOrder is the fixed fallback priority list.
	ProviderOrder []string

	// Cache TTLs per request kind.
	CurrentTTL  time.Duration
	ForecastTTL time.Duration

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Local station gate.
	LocalMaxAge     time.Duration
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	// MQTT ingestion; disabled when MQTTHost is empty.
	MQTTHost     string
	MQTTPort     int
	MQTTUsername string
	MQTTPassword string
	MQTTClientID string

	// Recommendation feature.
	OpenRouterAPIKey string
	OpenRouterURL    string
	OpenRouterModel  string

	// Geocoding for city query parameters.
	GeocoderAPIKey string

	// Cache warming.
	WarmLocations []weather.Location
	WarmInterval  time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.YandexAPIKey = os.Getenv("YANDEX_WEATHER_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterURL = getenvDefault("OPENROUTER_URL", "https://openrouter.ai/api/v1")
	cfg.OpenRouterModel = os.Getenv("OPENROUTER_MODEL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	order := getenvDefault("WEATHER_PROVIDER_ORDER", "openweather,yandex,openmeteo")
	for _, name := range strings.Split(order, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cfg.ProviderOrder = append(cfg.ProviderOrder, name)
		}
	}
	if len(cfg.ProviderOrder) == 0 {
		return nil, fmt.Errorf("WEATHER_PROVIDER_ORDER must name at least one provider")
	}

	var err error
	if cfg.CurrentTTL, err = getenvDuration("WEATHER_CURRENT_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.ForecastTTL, err = getenvDuration("WEATHER_FORECAST_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.LocalMaxAge, err = getenvDuration("LOCAL_STATION_MAX_AGE", "10m"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)

	cfg.MQTTHost = os.Getenv("MQTT_HOST")
	cfg.MQTTPort = getenvInt("MQTT_PORT", 1883)
	cfg.MQTTUsername = os.Getenv("MQTT_USERNAME")
	cfg.MQTTPassword = os.Getenv("MQTT_PASSWORD")
	cfg.MQTTClientID = os.Getenv("MQTT_CLIENT_ID")

	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.WarmLocations, err = parseLocations(os.Getenv("WARM_LOCATIONS")); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// parseLocations parses "lat,lon;lat,lon" pairs.
func parseLocations(raw string) ([]weather.Location, error) {
	if raw == "" {
		return nil, nil
	}
	var locs []weather.Location
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid WARM_LOCATIONS entry %q; want lat,lon", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in WARM_LOCATIONS entry %q", pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in WARM_LOCATIONS entry %q", pair)
		}
		locs = append(locs, weather.Location{Lat: lat, Lon: lon})
	}
	return locs, nil
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

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
