// Command weather-fetch resolves current weather for a coordinate pair using
// the same provider stack as the API server and prints it as JSON. Useful
// for smoke-testing credentials and provider order from the shell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/5ivekayri/DWv2/internal/cache"
	"github.com/5ivekayri/DWv2/internal/config"
	"github.com/5ivekayri/DWv2/internal/weather"
	"github.com/5ivekayri/DWv2/internal/weather/providers"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude")
	lon := flag.Float64("lon", 0, "longitude")
	flag.Parse()

	if flag.NFlag() < 2 {
		fmt.Fprintln(os.Stderr, "usage: weather-fetch --lat <latitude> --lon <longitude>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	ordered, err := providers.Build(cfg.ProviderOrder, providers.Credentials{
		OpenWeatherKey: cfg.OpenWeatherAPIKey,
		YandexKey:      cfg.YandexAPIKey,
	}, httpClient)
	if err != nil {
		log.Fatalf("failed to build providers: %v", err)
	}

	service := weather.NewService(
		weather.NewProviderSet(ordered...),
		cache.New(),
		weather.WithTTLs(cfg.CurrentTTL, cfg.ForecastTTL),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout*3)
	defer cancel()

	point, err := service.GetCurrent(ctx, *lat, *lon)
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	out, err := json.MarshalIndent(point, "", "  ")
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}
	fmt.Println(string(out))
}
