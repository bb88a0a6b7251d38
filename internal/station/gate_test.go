package station

import (
	"testing"
	"time"

	"github.com/5ivekayri/DWv2/internal/weather"
)

func newTestGate(store *Store, maxAge time.Duration, now time.Time) *Gate {
	g := NewGate(store, maxAge)
	g.now = func() time.Time { return now }
	return g
}

func TestGateFreshnessWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(0, 0)
	store.Add(Observation{StationID: "roof-1", ObservedAt: now.Add(-5 * time.Minute), TemperatureC: 17})

	g := newTestGate(store, 10*time.Minute, now)
	if !g.IsFresh(weather.KindCurrent) {
		t.Fatal("expected gate to be fresh within the window")
	}

	g = newTestGate(store, 3*time.Minute, now)
	if g.IsFresh(weather.KindCurrent) {
		t.Fatal("expected gate to be stale outside the window")
	}
}

func TestGateIsNeverFreshForForecastKinds(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(0, 0)
	store.Add(Observation{StationID: "roof-1", ObservedAt: now})

	g := newTestGate(store, time.Hour, now)
	if g.IsFresh(weather.KindHourly) {
		t.Fatal("station has no hourly data; gate must report stale")
	}
	if g.IsFresh(weather.KindDaily) {
		t.Fatal("station has no daily data; gate must report stale")
	}
}

func TestGateEmptyStoreIsStale(t *testing.T) {
	g := newTestGate(NewStore(0, 0), time.Hour, time.Now())
	if g.IsFresh(weather.KindCurrent) {
		t.Fatal("expected empty store to be stale")
	}
}

func TestGateCurrentBuildsNormalizedPoint(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(0, 0)
	store.Add(Observation{
		StationID:    "roof-1",
		ObservedAt:   now,
		TemperatureC: 17.5,
		PressureHpa:  1008,
		WindSpeedMS:  2.2,
		RainfallMM:   0.4,
	})

	g := newTestGate(store, time.Hour, now)
	point, err := g.Current(55.75, 37.62)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if point.Source != "localstation:roof-1" {
		t.Errorf("expected localstation source, got %q", point.Source)
	}
	if point.Latitude != 55.75 || point.Longitude != 37.62 {
		t.Errorf("expected point to echo request coordinates")
	}
	if point.TemperatureC != 17.5 || point.PressureHpa != 1008 || point.PrecipitationMM != 0.4 {
		t.Errorf("unexpected point values: %+v", point)
	}
}

func TestGateForecastsUnsupported(t *testing.T) {
	g := NewGate(NewStore(0, 0), time.Hour)
	if _, err := g.Hourly(1, 2, 24); err == nil {
		t.Fatal("expected hourly to be unsupported")
	}
	if _, err := g.Daily(1, 2, 7); err == nil {
		t.Fatal("expected daily to be unsupported")
	}
}
