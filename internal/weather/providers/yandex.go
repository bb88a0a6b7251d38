package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// Yandex resolves current, hourly and daily data from the Yandex Weather
// forecast API. Yandex reports pressure in mmHg (sometimes Pa), so this
// adapter owns the normalization to hPa.
type Yandex struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewYandex(client *http.Client, apiKey string) *Yandex {
	return &Yandex{
		name:    "yandex",
		apiKey:  apiKey,
		baseURL: "https://api.weather.yandex.ru/v2/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("yandex"),
	}
}

func (p *Yandex) Name() string {
	return p.name
}

// yandexConditions covers the condition blocks Yandex embeds in fact, hour
// and day-part objects. Pointer fields keep absent and zero apart.
type yandexConditions struct {
	Temp        *float64 `json:"temp"`
	TempAvg     *float64 `json:"temp_avg"`
	PressureHPa *float64 `json:"pressure_h_pa"`
	PressurePa  *float64 `json:"pressure_pa"`
	PressureMM  *float64 `json:"pressure_mm"`
	WindSpeed   *float64 `json:"wind_speed"`
	PrecMM      *float64 `json:"prec_mm"`
	PrecMMMin   *float64 `json:"prec_mm_min"`
	PrecMMMax   *float64 `json:"prec_mm_max"`
	ObsTime     *int64   `json:"obs_time"`
	Hour        string   `json:"hour"`
}

type yandexPayload struct {
	Now       int64             `json:"now"`
	Fact      *yandexConditions `json:"fact"`
	Forecasts []struct {
		Date  string                       `json:"date"`
		Hours []yandexConditions           `json:"hours"`
		Parts map[string]*yandexConditions `json:"parts"`
	} `json:"forecasts"`
}

// Current implements weather.CurrentProvider.
func (p *Yandex) Current(ctx context.Context, lat, lon float64) (weather.Point, error) {
	payload, err := p.fetch(ctx, lat, lon, false, 1)
	if err != nil {
		return weather.Point{}, err
	}
	if payload.Fact == nil {
		return weather.Point{}, fmt.Errorf("%w: missing fact in response", weather.ErrMalformed)
	}

	observedAt := time.Now().UTC()
	switch {
	case payload.Fact.ObsTime != nil:
		observedAt = time.Unix(*payload.Fact.ObsTime, 0).UTC()
	case payload.Now > 0:
		observedAt = time.Unix(payload.Now, 0).UTC()
	}
	return p.buildPoint(*payload.Fact, lat, lon, observedAt, "fact"), nil
}

// Hourly implements weather.HourlyProvider.
func (p *Yandex) Hourly(ctx context.Context, lat, lon float64, hours int) ([]weather.Point, error) {
	payload, err := p.fetch(ctx, lat, lon, true, 1)
	if err != nil {
		return nil, err
	}
	if len(payload.Forecasts) == 0 {
		return nil, fmt.Errorf("%w: missing forecasts in response", weather.ErrMalformed)
	}
	forecast := payload.Forecasts[0]
	if forecast.Date == "" || len(forecast.Hours) == 0 {
		return nil, fmt.Errorf("%w: missing hourly data", weather.ErrMalformed)
	}
	base, err := time.Parse("2006-01-02", forecast.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad forecast date %q", weather.ErrMalformed, forecast.Date)
	}

	points := make([]weather.Point, 0, hours)
	for i, hour := range forecast.Hours {
		if i >= hours {
			break
		}
		h, _ := strconv.Atoi(hour.Hour)
		ts := time.Date(base.Year(), base.Month(), base.Day(), h, 0, 0, 0, time.UTC)
		points = append(points, p.buildPoint(hour, lat, lon, ts, "hour"))
	}
	return points, nil
}

// Daily implements weather.DailyProvider.
func (p *Yandex) Daily(ctx context.Context, lat, lon float64, days int) ([]weather.Point, error) {
	payload, err := p.fetch(ctx, lat, lon, false, days)
	if err != nil {
		return nil, err
	}
	if len(payload.Forecasts) == 0 {
		return nil, fmt.Errorf("%w: missing forecasts in response", weather.ErrMalformed)
	}

	points := make([]weather.Point, 0, days)
	for i, forecast := range payload.Forecasts {
		if i >= days {
			break
		}
		part := forecast.Parts["day"]
		if part == nil {
			part = forecast.Parts["day_short"]
		}
		if part == nil {
			part = forecast.Parts["whole"]
		}
		if part == nil {
			return nil, fmt.Errorf("%w: missing day part in forecast", weather.ErrMalformed)
		}
		ts, err := time.Parse("2006-01-02", forecast.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad forecast date %q", weather.ErrMalformed, forecast.Date)
		}
		points = append(points, p.buildPoint(*part, lat, lon, ts.UTC(), "day"))
	}
	return points, nil
}

func (p *Yandex) fetch(ctx context.Context, lat, lon float64, hours bool, limit int) (*yandexPayload, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: yandex api key is not configured", weather.ErrTransient)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("lang", "en_US")
		values.Set("hours", strconv.FormatBool(hours))
		values.Set("limit", strconv.Itoa(limit))
		values.Set("extra", "true")

		req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Yandex-API-Key", p.apiKey)
		return req, nil
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	var payload yandexPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *Yandex) buildPoint(c yandexConditions, lat, lon float64, ts time.Time, variant string) weather.Point {
	temp := deref(c.Temp)
	if c.Temp == nil {
		temp = deref(c.TempAvg)
	}
	return weather.Point{
		Latitude:        lat,
		Longitude:       lon,
		TemperatureC:    temp,
		PressureHpa:     extractPressure(c),
		WindSpeedMS:     deref(c.WindSpeed),
		PrecipitationMM: extractPrecipitation(c),
		Source:          p.name + ":" + variant,
		ObservedAt:      ts,
	}
}

// extractPressure prefers an hPa value when present, then Pa, then mmHg.
func extractPressure(c yandexConditions) float64 {
	switch {
	case c.PressureHPa != nil:
		return *c.PressureHPa
	case c.PressurePa != nil:
		return weather.PaToHpa(*c.PressurePa)
	case c.PressureMM != nil:
		return weather.MmHgToHpa(*c.PressureMM)
	}
	return 0
}

func extractPrecipitation(c yandexConditions) float64 {
	if c.PrecMM != nil {
		return *c.PrecMM
	}
	if c.PrecMMMin != nil && c.PrecMMMax != nil {
		return (*c.PrecMMMin + *c.PrecMMMax) / 2
	}
	return 0
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
