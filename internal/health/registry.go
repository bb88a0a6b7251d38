package health

import (
	"sync"
	"time"

	"github.com/5ivekayri/DWv2/internal/cache"
)

// StatsSource supplies cache counters for the snapshot. *cache.Cache
// satisfies it.
type StatsSource interface {
	Stats() cache.Stats
}

// Registry keeps station heartbeats and provider error counters for the
// admin health endpoint. It is safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	stationLastSeen map[string]time.Time
	providerErrors  map[string]int64

	stats StatsSource // optional
}

// NewRegistry creates an empty registry. stats may be nil.
func NewRegistry(stats StatsSource) *Registry {
	return &Registry{
		stationLastSeen: make(map[string]time.Time),
		providerErrors:  make(map[string]int64),
		stats:           stats,
	}
}

// RecordStationHeartbeat notes that a station reported at the given time.
// A zero time means now.
func (r *Registry) RecordStationHeartbeat(stationID string, when time.Time) {
	if stationID == "" {
		return
	}
	if when.IsZero() {
		when = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stationLastSeen[stationID] = when.UTC()
}

// RecordProviderError bumps the error counter for a provider.
func (r *Registry) RecordProviderError(provider string) {
	if provider == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providerErrors[provider]++
}

// ProviderErrors returns a copy of the per-provider error counters.
func (r *Registry) ProviderErrors() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int64, len(r.providerErrors))
	for k, v := range r.providerErrors {
		out[k] = v
	}
	return out
}

// Snapshot returns the full health payload served by the admin endpoint.
func (r *Registry) Snapshot() map[string]any {
	r.mu.Lock()
	stations := make(map[string]string, len(r.stationLastSeen))
	for id, when := range r.stationLastSeen {
		stations[id] = when.Format(time.RFC3339)
	}
	providers := make(map[string]int64, len(r.providerErrors))
	for name, count := range r.providerErrors {
		providers[name] = count
	}
	r.mu.Unlock()

	snapshot := map[string]any{
		"stations":        stations,
		"provider_errors": providers,
	}
	if r.stats != nil {
		snapshot["cache"] = r.stats.Stats()
	}
	return snapshot
}
