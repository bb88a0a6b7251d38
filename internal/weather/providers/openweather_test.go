package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/5ivekayri/DWv2/internal/weather"
)

func newTestOpenWeather(url string) *OpenWeather {
	p := NewOpenWeather(&http.Client{Timeout: 2 * time.Second}, "test-key")
	p.baseURL = url
	p.httpCfg.Backoff.MaxRetries = 0
	return p
}

func TestOpenWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("expected api key in query, got %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("expected metric units, got %q", got)
		}
		w.Write([]byte(`{
			"dt": 1717243200,
			"main": {"temp": 18.4, "pressure": 1012},
			"wind": {"speed": 3.2},
			"rain": {"1h": 0.6}
		}`))
	}))
	defer srv.Close()

	p := newTestOpenWeather(srv.URL)
	point, err := p.Current(context.Background(), 55.75, 37.62)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if point.Source != "openweather" {
		t.Errorf("expected source openweather, got %q", point.Source)
	}
	if point.Latitude != 55.75 || point.Longitude != 37.62 {
		t.Errorf("expected point to echo request coordinates, got %v,%v", point.Latitude, point.Longitude)
	}
	if point.TemperatureC != 18.4 {
		t.Errorf("expected temperature 18.4, got %v", point.TemperatureC)
	}
	if point.PressureHpa != 1012 {
		t.Errorf("expected pressure 1012, got %v", point.PressureHpa)
	}
	if point.WindSpeedMS != 3.2 {
		t.Errorf("expected wind 3.2, got %v", point.WindSpeedMS)
	}
	if math.Abs(point.PrecipitationMM-0.6) > 1e-9 {
		t.Errorf("expected precipitation 0.6, got %v", point.PrecipitationMM)
	}
	want := time.Unix(1717243200, 0).UTC()
	if !point.ObservedAt.Equal(want) {
		t.Errorf("expected observed_at %v, got %v", want, point.ObservedAt)
	}
}

func TestOpenWeatherPrecipitationFallsBackToThreeHour(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dt": 1717243200, "main": {"temp": 10, "pressure": 1000}, "rain": {"3h": 2.4}}`))
	}))
	defer srv.Close()

	point, err := newTestOpenWeather(srv.URL).Current(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(point.PrecipitationMM-2.4) > 1e-9 {
		t.Errorf("expected 3h precipitation fallback, got %v", point.PrecipitationMM)
	}
}

func TestOpenWeatherQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestOpenWeather(srv.URL).Current(context.Background(), 1, 2)
	if !errors.Is(err, weather.ErrQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestOpenWeatherServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestOpenWeather(srv.URL).Current(context.Background(), 1, 2)
	if !errors.Is(err, weather.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestOpenWeatherMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"main": `},
		{"missing main", `{"dt": 1717243200, "wind": {"speed": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestOpenWeather(srv.URL).Current(context.Background(), 1, 2)
			if !errors.Is(err, weather.ErrMalformed) {
				t.Fatalf("expected malformed error, got %v", err)
			}
		})
	}
}

func TestOpenWeatherBoundedTransportRetries(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestOpenWeather(srv.URL)
	p.httpCfg.Backoff.MaxRetries = 2
	p.httpCfg.Backoff.InitialInterval = time.Millisecond

	_, err := p.Current(context.Background(), 1, 2)
	if !errors.Is(err, weather.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if requests != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", requests)
	}
}

func TestOpenWeatherMissingAPIKey(t *testing.T) {
	p := NewOpenWeather(&http.Client{}, "")
	if _, err := p.Current(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error without api key")
	}
}
