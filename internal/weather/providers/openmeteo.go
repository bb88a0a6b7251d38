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

// OpenMeteo resolves current, hourly and daily data from the Open-Meteo
// forecast API. The API is keyless. Wind speeds arrive in km/h and are
// converted to m/s here.
type OpenMeteo struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteo(client *http.Client) *OpenMeteo {
	return &OpenMeteo{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("openmeteo"),
	}
}

func (p *OpenMeteo) Name() string {
	return p.name
}

// Current implements weather.CurrentProvider.
func (p *OpenMeteo) Current(ctx context.Context, lat, lon float64) (weather.Point, error) {
	resp, err := p.fetch(ctx, lat, lon, url.Values{
		"current": {"temperature_2m,pressure_msl,windspeed_10m,precipitation"},
	})
	if err != nil {
		return weather.Point{}, err
	}

	var payload struct {
		Current *struct {
			Time          string  `json:"time"`
			Temperature   float64 `json:"temperature_2m"`
			Pressure      float64 `json:"pressure_msl"`
			WindSpeed     float64 `json:"windspeed_10m"`
			Precipitation float64 `json:"precipitation"`
		} `json:"current"`
		// Older deployments answer with current_weather instead.
		CurrentWeather *struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
		} `json:"current_weather"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return weather.Point{}, err
	}

	point := weather.Point{
		Latitude:  lat,
		Longitude: lon,
		Source:    p.name + ":current",
	}
	switch {
	case payload.Current != nil:
		point.TemperatureC = payload.Current.Temperature
		point.PressureHpa = payload.Current.Pressure
		point.WindSpeedMS = weather.KmhToMs(payload.Current.WindSpeed)
		point.PrecipitationMM = payload.Current.Precipitation
		point.ObservedAt = parseMeteoTime(payload.Current.Time)
	case payload.CurrentWeather != nil:
		point.TemperatureC = payload.CurrentWeather.Temperature
		point.WindSpeedMS = weather.KmhToMs(payload.CurrentWeather.WindSpeed)
		point.ObservedAt = parseMeteoTime(payload.CurrentWeather.Time)
	default:
		return weather.Point{}, fmt.Errorf("%w: missing current weather", weather.ErrMalformed)
	}
	return point, nil
}

// Hourly implements weather.HourlyProvider.
func (p *OpenMeteo) Hourly(ctx context.Context, lat, lon float64, hours int) ([]weather.Point, error) {
	resp, err := p.fetch(ctx, lat, lon, url.Values{
		"hourly": {"temperature_2m,pressure_msl,windspeed_10m,precipitation"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature   []float64 `json:"temperature_2m"`
			Pressure      []float64 `json:"pressure_msl"`
			WindSpeed     []float64 `json:"windspeed_10m"`
			Precipitation []float64 `json:"precipitation"`
		} `json:"hourly"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if len(payload.Hourly.Time) == 0 {
		return nil, fmt.Errorf("%w: missing hourly data", weather.ErrMalformed)
	}

	points := make([]weather.Point, 0, hours)
	for i, ts := range payload.Hourly.Time {
		if i >= hours {
			break
		}
		points = append(points, weather.Point{
			Latitude:        lat,
			Longitude:       lon,
			TemperatureC:    at(payload.Hourly.Temperature, i),
			PressureHpa:     at(payload.Hourly.Pressure, i),
			WindSpeedMS:     weather.KmhToMs(at(payload.Hourly.WindSpeed, i)),
			PrecipitationMM: at(payload.Hourly.Precipitation, i),
			Source:          p.name + ":hour",
			ObservedAt:      parseMeteoTime(ts),
		})
	}
	return points, nil
}

// Daily implements weather.DailyProvider.
func (p *OpenMeteo) Daily(ctx context.Context, lat, lon float64, days int) ([]weather.Point, error) {
	resp, err := p.fetch(ctx, lat, lon, url.Values{
		"daily": {"temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Daily struct {
			Time          []string  `json:"time"`
			TempMax       []float64 `json:"temperature_2m_max"`
			TempMin       []float64 `json:"temperature_2m_min"`
			Precipitation []float64 `json:"precipitation_sum"`
			WindMax       []float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if len(payload.Daily.Time) == 0 {
		return nil, fmt.Errorf("%w: missing daily data", weather.ErrMalformed)
	}

	points := make([]weather.Point, 0, days)
	for i, ts := range payload.Daily.Time {
		if i >= days {
			break
		}
		points = append(points, weather.Point{
			Latitude:        lat,
			Longitude:       lon,
			TemperatureC:    (at(payload.Daily.TempMin, i) + at(payload.Daily.TempMax, i)) / 2,
			WindSpeedMS:     weather.KmhToMs(at(payload.Daily.WindMax, i)),
			PrecipitationMM: at(payload.Daily.Precipitation, i),
			Source:          p.name + ":day",
			ObservedAt:      parseMeteoTime(ts),
		})
	}
	return points, nil
}

func (p *OpenMeteo) fetch(ctx context.Context, lat, lon float64, extra url.Values) (*http.Response, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("timezone", "UTC")
		for k, vs := range extra {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	}
	return doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
}

// parseMeteoTime accepts Open-Meteo's minute-resolution ISO timestamps as
// well as bare dates from the daily endpoint. Unparseable input falls back
// to the current time.
func parseMeteoTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

func at(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}
