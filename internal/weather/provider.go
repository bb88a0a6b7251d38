package weather

import (
	"context"
)

// Kind identifies the query kinds the engine can resolve.
type Kind string

const (
	KindCurrent Kind = "current"
	KindHourly  Kind = "hourly"
	KindDaily   Kind = "daily"
)

// Named is the minimal contract every provider adapter satisfies.
type Named interface {
	Name() string
}

// CurrentProvider resolves a single current-weather observation.
type CurrentProvider interface {
	Named
	Current(ctx context.Context, lat, lon float64) (Point, error)
}

// HourlyProvider resolves an hourly forecast, one Point per hour.
type HourlyProvider interface {
	Named
	Hourly(ctx context.Context, lat, lon float64, hours int) ([]Point, error)
}

// DailyProvider resolves a daily forecast, one Point per day.
type DailyProvider interface {
	Named
	Daily(ctx context.Context, lat, lon float64, days int) ([]Point, error)
}

// ProviderSet holds the configured providers split by capability, each slice
// in fallback priority order. Capabilities are probed once here, at
// configuration time; the orchestrator never type-asserts per request.
type ProviderSet struct {
	Current []CurrentProvider
	Hourly  []HourlyProvider
	Daily   []DailyProvider
}

// NewProviderSet builds a ProviderSet from an ordered provider list. The
// priority order of the input is preserved within each capability.
func NewProviderSet(ordered ...Named) ProviderSet {
	var set ProviderSet
	for _, p := range ordered {
		if cp, ok := p.(CurrentProvider); ok {
			set.Current = append(set.Current, cp)
		}
		if hp, ok := p.(HourlyProvider); ok {
			set.Hourly = append(set.Hourly, hp)
		}
		if dp, ok := p.(DailyProvider); ok {
			set.Daily = append(set.Daily, dp)
		}
	}
	return set
}

// Gate is an optional local data source (e.g. an on-site station) that
// preempts remote resolution entirely while its data is fresh. Gate errors
// are swallowed by the orchestrator; they never reach the caller.
type Gate interface {
	IsFresh(kind Kind) bool
	Current(lat, lon float64) (Point, error)
	Hourly(lat, lon float64, hours int) ([]Point, error)
	Daily(lat, lon float64, days int) ([]Point, error)
}
