package station

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no observations exist for a station.
	ErrNotFound = errors.New("no observations for station")
)

// Observation is a single measurement reported by an on-site station.
type Observation struct {
	StationID        string    `json:"station_id"`
	ObservedAt       time.Time `json:"ts_utc"` // always UTC
	TemperatureC     float64   `json:"temperature_c"`
	HumidityPct      float64   `json:"humidity_percent"`
	PressureHpa      float64   `json:"pressure_hpa"`
	WindSpeedMS      float64   `json:"wind_speed_ms"`
	WindDirectionDeg float64   `json:"wind_direction_deg"`
	RainfallMM       float64   `json:"rainfall_mm"`
}

// Store is a concurrency-safe in-memory observation store with retention.
// Observations are deduplicated by (station, timestamp); a replayed MQTT
// message is a no-op.
type Store struct {
	mu sync.RWMutex

	// key: station id, value: observations ordered by ObservedAt ascending
	data map[string][]Observation

	maxHistory int           // max observations per station, 0 = unlimited
	maxAge     time.Duration // max observation age, 0 = unlimited

	now func() time.Time
}

// NewStore creates a Store with the given retention limits.
func NewStore(maxHistory int, maxAge time.Duration) *Store {
	return &Store{
		data:       make(map[string][]Observation),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Add inserts an observation and reports whether it was stored. An
// observation with a timestamp already present for the station is a
// duplicate and is dropped.
func (s *Store) Add(obs Observation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.data[obs.StationID]
	for _, existing := range history {
		if existing.ObservedAt.Equal(obs.ObservedAt) {
			return false
		}
	}

	// Keep the slice ordered; observations usually arrive in order so the
	// common case is an append.
	i := len(history)
	for i > 0 && history[i-1].ObservedAt.After(obs.ObservedAt) {
		i--
	}
	history = append(history, Observation{})
	copy(history[i+1:], history[i:])
	history[i] = obs

	// Retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		over := len(history) - s.maxHistory
		history = history[over:]
	}

	// Retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		j := 0
		for ; j < len(history); j++ {
			if !history[j].ObservedAt.Before(cutoff) {
				break
			}
		}
		if j > 0 {
			history = history[j:]
		}
	}

	s.data[obs.StationID] = history
	return true
}

// LatestFor returns the most recent observation for a station.
func (s *Store) LatestFor(stationID string) (Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[stationID]
	if len(history) == 0 {
		return Observation{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Latest returns the most recent observation across all stations.
func (s *Store) Latest() (Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  Observation
		found bool
	)
	for _, history := range s.data {
		if len(history) == 0 {
			continue
		}
		last := history[len(history)-1]
		if !found || last.ObservedAt.After(best.ObservedAt) {
			best = last
			found = true
		}
	}
	if !found {
		return Observation{}, ErrNotFound
	}
	return best, nil
}

// Stations returns the ids of all stations that have reported at least once.
func (s *Store) Stations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id, history := range s.data {
		if len(history) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
