package providers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// Credentials holds the per-provider API keys.
type Credentials struct {
	OpenWeatherKey string
	YandexKey      string
}

// Build constructs provider adapters in the given priority order. Providers
// whose API key is missing are skipped with a log line; Open-Meteo is keyless
// and always available. The order list is configuration, so an unknown name
// is an error rather than a skip.
func Build(order []string, creds Credentials, client *http.Client) ([]weather.Named, error) {
	var out []weather.Named
	for _, name := range order {
		switch name {
		case "openweather":
			if creds.OpenWeatherKey == "" {
				log.Printf("providers: skipping openweather, no api key configured")
				continue
			}
			out = append(out, NewOpenWeather(client, creds.OpenWeatherKey))
		case "yandex":
			if creds.YandexKey == "" {
				log.Printf("providers: skipping yandex, no api key configured")
				continue
			}
			out = append(out, NewYandex(client, creds.YandexKey))
		case "openmeteo":
			out = append(out, NewOpenMeteo(client))
		default:
			return nil, fmt.Errorf("unknown weather provider %q", name)
		}
	}
	return out, nil
}
