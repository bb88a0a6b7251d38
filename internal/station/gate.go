package station

import (
	"fmt"
	"time"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// Gate exposes the station store as a weather.Gate. While the newest
// observation is younger than the freshness window, current-weather requests
// are answered locally and remote providers are never called. The station
// has no forecast data, so hourly and daily are always reported stale.
type Gate struct {
	store  *Store
	maxAge time.Duration

	now func() time.Time
}

// NewGate creates a Gate over the store with the given freshness window.
func NewGate(store *Store, maxAge time.Duration) *Gate {
	return &Gate{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// IsFresh implements weather.Gate.
func (g *Gate) IsFresh(kind weather.Kind) bool {
	if kind != weather.KindCurrent {
		return false
	}
	obs, err := g.store.Latest()
	if err != nil {
		return false
	}
	return g.now().Sub(obs.ObservedAt) <= g.maxAge
}

// Current implements weather.Gate. The point echoes the requested
// coordinates; the station is assumed co-located with them.
func (g *Gate) Current(lat, lon float64) (weather.Point, error) {
	obs, err := g.store.Latest()
	if err != nil {
		return weather.Point{}, err
	}
	return weather.Point{
		Latitude:        lat,
		Longitude:       lon,
		TemperatureC:    obs.TemperatureC,
		PressureHpa:     obs.PressureHpa,
		WindSpeedMS:     obs.WindSpeedMS,
		PrecipitationMM: obs.RainfallMM,
		Source:          "localstation:" + obs.StationID,
		ObservedAt:      obs.ObservedAt.UTC(),
	}, nil
}

// Hourly implements weather.Gate; the station keeps no forecast data.
func (g *Gate) Hourly(lat, lon float64, hours int) ([]weather.Point, error) {
	return nil, fmt.Errorf("local station has no hourly data")
}

// Daily implements weather.Gate; the station keeps no forecast data.
func (g *Gate) Daily(lat, lon float64, days int) ([]weather.Point, error) {
	return nil, fmt.Errorf("local station has no daily data")
}
