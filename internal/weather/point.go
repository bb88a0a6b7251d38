package weather

import (
	"math"
	"time"
)

// Point is a normalized weather observation. Every provider adapter must
// emit values in these fixed units:
//   - temperature in Celsius
//   - pressure in hectopascal (hPa)
//   - wind speed in metres per second (m/s)
//   - precipitation in millimetres (mm)
//
// Unit conversion happens inside the adapters; callers never see raw
// provider units.
type Point struct {
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	TemperatureC    float64   `json:"temperature_c"`
	PressureHpa     float64   `json:"pressure_hpa"`
	WindSpeedMS     float64   `json:"wind_speed_ms"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	Source          string    `json:"source"`
	ObservedAt      time.Time `json:"observed_at"` // always UTC
}

// Location is a pair of coordinates we resolve or prefetch weather for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// KmhToMs converts a wind speed from km/h to m/s.
func KmhToMs(v float64) float64 {
	return round2(v / 3.6)
}

// MmHgToHpa converts a pressure from millimetres of mercury to hectopascal.
func MmHgToHpa(v float64) float64 {
	return round2(v * 1.33322)
}

// PaToHpa converts a pressure from pascal to hectopascal.
func PaToHpa(v float64) float64 {
	return round2(v / 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
