package health

import (
	"testing"
	"time"

	"github.com/5ivekayri/DWv2/internal/cache"
)

func TestRecordStationHeartbeat(t *testing.T) {
	r := NewRegistry(nil)
	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r.RecordStationHeartbeat("roof-1", when)
	r.RecordStationHeartbeat("", when) // ignored

	snapshot := r.Snapshot()
	stations := snapshot["stations"].(map[string]string)
	if len(stations) != 1 {
		t.Fatalf("expected 1 station, got %d", len(stations))
	}
	if stations["roof-1"] != when.Format(time.RFC3339) {
		t.Fatalf("unexpected heartbeat value %q", stations["roof-1"])
	}
}

func TestRecordProviderError(t *testing.T) {
	r := NewRegistry(nil)

	r.RecordProviderError("openweather")
	r.RecordProviderError("openweather")
	r.RecordProviderError("yandex")

	counts := r.ProviderErrors()
	if counts["openweather"] != 2 || counts["yandex"] != 1 {
		t.Fatalf("unexpected counters: %v", counts)
	}
}

func TestSnapshotIncludesCacheStats(t *testing.T) {
	c := cache.New()
	c.Set("k", "v", time.Minute)
	c.Get("k")
	c.Get("missing")

	r := NewRegistry(c)
	snapshot := r.Snapshot()

	stats, ok := snapshot["cache"].(cache.Stats)
	if !ok {
		t.Fatalf("expected cache stats in snapshot, got %T", snapshot["cache"])
	}
	if stats.Hits != 1 || stats.Misses != 1 || stats.Keys != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestSnapshotWithoutStatsSource(t *testing.T) {
	r := NewRegistry(nil)
	if _, ok := r.Snapshot()["cache"]; ok {
		t.Fatal("expected no cache section without a stats source")
	}
}
