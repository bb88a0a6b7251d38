package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/5ivekayri/DWv2/internal/station"
)

// measurement mirrors the JSON stations publish. Stations are inconsistent
// about where they put metrics: newer firmware nests them under "metrics",
// older firmware puts them at the top level, and humidity appears both as
// "humidity" and "humidity_percent". Top-level values win over nested ones.
type measurement struct {
	TsUTC           string             `json:"ts_utc"`
	TemperatureC    *float64           `json:"temperature_c"`
	Humidity        *float64           `json:"humidity"`
	HumidityPercent *float64           `json:"humidity_percent"`
	PressureHpa     *float64           `json:"pressure_hpa"`
	WindSpeedMS     *float64           `json:"wind_speed_ms"`
	WindDirection   *float64           `json:"wind_direction_deg"`
	RainfallMM      *float64           `json:"rainfall_mm"`
	Metrics         map[string]float64 `json:"metrics"`
}

// ParsePayload validates a raw MQTT message and converts it into a store
// observation. The station id comes from the topic
// (weather/stations/<id>/measurements); the timestamp must be present and
// parse as UTC.
func ParsePayload(topic string, payload []byte) (station.Observation, error) {
	stationID, err := stationIDFromTopic(topic)
	if err != nil {
		return station.Observation{}, err
	}

	var m measurement
	if err := json.Unmarshal(payload, &m); err != nil {
		return station.Observation{}, fmt.Errorf("invalid measurement payload: %w", err)
	}
	if m.TsUTC == "" {
		return station.Observation{}, fmt.Errorf("measurement is missing ts_utc")
	}
	ts, err := parseUTC(m.TsUTC)
	if err != nil {
		return station.Observation{}, fmt.Errorf("invalid ts_utc %q: %w", m.TsUTC, err)
	}

	humidity := m.HumidityPercent
	if humidity == nil {
		humidity = m.Humidity
	}

	return station.Observation{
		StationID:        stationID,
		ObservedAt:       ts,
		TemperatureC:     pick(m.TemperatureC, m.Metrics, "temperature_c"),
		HumidityPct:      pickHumidity(humidity, m.Metrics),
		PressureHpa:      pick(m.PressureHpa, m.Metrics, "pressure_hpa"),
		WindSpeedMS:      pick(m.WindSpeedMS, m.Metrics, "wind_speed_ms"),
		WindDirectionDeg: pick(m.WindDirection, m.Metrics, "wind_direction_deg"),
		RainfallMM:       pick(m.RainfallMM, m.Metrics, "rainfall_mm"),
	}, nil
}

func stationIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "weather" || parts[1] != "stations" || parts[3] != "measurements" || parts[2] == "" {
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
	return parts[2], nil
}

func parseUTC(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func pick(direct *float64, metrics map[string]float64, key string) float64 {
	if direct != nil {
		return *direct
	}
	return metrics[key]
}

func pickHumidity(direct *float64, metrics map[string]float64) float64 {
	if direct != nil {
		return *direct
	}
	if v, ok := metrics["humidity"]; ok {
		return v
	}
	return metrics["humidity_percent"]
}
