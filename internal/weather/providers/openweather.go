package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// OpenWeather resolves current observations from the OpenWeatherMap API.
// With units=metric the payload is already in engine units (°C, hPa, m/s, mm).
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("openweather"),
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

// Current implements weather.CurrentProvider.
func (p *OpenWeather) Current(ctx context.Context, lat, lon float64) (weather.Point, error) {
	if p.apiKey == "" {
		return weather.Point{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrTransient)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Point{}, err
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp     float64 `json:"temp"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Point{}, err
	}
	if payload.Main == nil {
		return weather.Point{}, fmt.Errorf("%w: missing main block", weather.ErrMalformed)
	}

	observedAt := time.Now().UTC()
	if payload.Dt > 0 {
		observedAt = time.Unix(payload.Dt, 0).UTC()
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}

	return weather.Point{
		Latitude:        lat,
		Longitude:       lon,
		TemperatureC:    payload.Main.Temp,
		PressureHpa:     payload.Main.Pressure,
		WindSpeedMS:     payload.Wind.Speed,
		PrecipitationMM: precip,
		Source:          p.name,
		ObservedAt:      observedAt,
	}, nil
}
