package ingest

import (
	"testing"
	"time"
)

const topic = "weather/stations/roof-1/measurements"

func TestParsePayload(t *testing.T) {
	payload := []byte(`{
		"ts_utc": "2024-06-01T12:00:00Z",
		"temperature_c": 17.5,
		"humidity_percent": 62,
		"pressure_hpa": 1008.2,
		"wind_speed_ms": 2.4,
		"rainfall_mm": 0.2
	}`)

	obs, err := ParsePayload(topic, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.StationID != "roof-1" {
		t.Errorf("expected station id from topic, got %q", obs.StationID)
	}
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !obs.ObservedAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, obs.ObservedAt)
	}
	if obs.TemperatureC != 17.5 || obs.HumidityPct != 62 || obs.RainfallMM != 0.2 {
		t.Errorf("unexpected observation: %+v", obs)
	}
}

func TestParsePayloadMetricsFallback(t *testing.T) {
	payload := []byte(`{
		"ts_utc": "2024-06-01T12:00:00Z",
		"metrics": {
			"temperature_c": 9.5,
			"humidity": 71,
			"wind_speed_ms": 5.5
		}
	}`)

	obs, err := ParsePayload(topic, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.TemperatureC != 9.5 {
		t.Errorf("expected nested temperature, got %v", obs.TemperatureC)
	}
	if obs.HumidityPct != 71 {
		t.Errorf("expected humidity from the bare metrics key, got %v", obs.HumidityPct)
	}
}

func TestParsePayloadTopLevelWinsOverMetrics(t *testing.T) {
	payload := []byte(`{
		"ts_utc": "2024-06-01T12:00:00Z",
		"temperature_c": 20,
		"metrics": {"temperature_c": 5}
	}`)

	obs, err := ParsePayload(topic, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.TemperatureC != 20 {
		t.Errorf("expected top-level value to win, got %v", obs.TemperatureC)
	}
}

func TestParsePayloadNonUTCOffsetIsNormalized(t *testing.T) {
	payload := []byte(`{"ts_utc": "2024-06-01T15:00:00+03:00", "temperature_c": 1}`)

	obs, err := ParsePayload(topic, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !obs.ObservedAt.Equal(want) {
		t.Errorf("expected normalized UTC %v, got %v", want, obs.ObservedAt)
	}
}

func TestParsePayloadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"missing ts", topic, `{"temperature_c": 1}`},
		{"unparseable ts", topic, `{"ts_utc": "yesterday"}`},
		{"bad json", topic, `{"ts_utc": `},
		{"wrong topic", "weather/other/roof-1/measurements", `{"ts_utc": "2024-06-01T12:00:00Z"}`},
		{"empty station id", "weather/stations//measurements", `{"ts_utc": "2024-06-01T12:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePayload(tt.topic, []byte(tt.payload)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
