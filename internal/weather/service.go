package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/5ivekayri/DWv2/internal/cache"
)

// Default TTLs per query kind. Forecast data moves slower than current
// observations, so it is cached longer.
const (
	DefaultCurrentTTL  = 10 * time.Minute
	DefaultForecastTTL = 30 * time.Minute
)

// Service resolves normalized weather observations for coordinates by
// consulting, in order: the local-override gate, the TTL cache, then the
// configured providers one at a time until the first success.
//
// Construct one Service at startup and pass it to the request handlers;
// it is safe for concurrent use.
type Service struct {
	providers ProviderSet
	cache     *cache.Cache
	gate      Gate // optional

	currentTTL  time.Duration
	forecastTTL time.Duration

	// onFailure, when set, observes every individual provider failure.
	// The health registry hangs off this hook.
	onFailure func(provider string, err error)
}

// Option customizes a Service.
type Option func(*Service)

// WithGate installs a local-override gate.
func WithGate(g Gate) Option {
	return func(s *Service) { s.gate = g }
}

// WithTTLs overrides the per-kind cache TTLs.
func WithTTLs(current, forecast time.Duration) Option {
	return func(s *Service) {
		if current > 0 {
			s.currentTTL = current
		}
		if forecast > 0 {
			s.forecastTTL = forecast
		}
	}
}

// WithFailureHook registers a callback invoked for each provider failure.
func WithFailureHook(fn func(provider string, err error)) Option {
	return func(s *Service) { s.onFailure = fn }
}

// NewService creates a Service over the given provider set and cache.
func NewService(providers ProviderSet, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		providers:   providers,
		cache:       c,
		currentTTL:  DefaultCurrentTTL,
		forecastTTL: DefaultForecastTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCurrent returns one normalized observation for the coordinates.
func (s *Service) GetCurrent(ctx context.Context, lat, lon float64) (Point, error) {
	if local, ok := s.tryLocalPoint(KindCurrent, lat, lon); ok {
		return local, nil
	}

	key := fingerprint(KindCurrent, lat, lon, -1)
	if v, ok := s.cache.Get(key); ok {
		if p, ok := v.(Point); ok {
			return p, nil
		}
	}

	var failures []ProviderFailure
	for _, p := range s.providers.Current {
		point, err := p.Current(ctx, lat, lon)
		if err != nil {
			failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
			s.noteFailure(p.Name(), err)
			continue
		}
		s.cache.Set(key, point, s.currentTTL)
		return point, nil
	}
	return Point{}, &AllFailedError{Kind: KindCurrent, Failures: failures}
}

// GetHourly returns up to hours Points, one per hour, ordered ascending.
func (s *Service) GetHourly(ctx context.Context, lat, lon float64, hours int) ([]Point, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("hours must be greater than zero")
	}
	if local, ok := s.tryLocalList(KindHourly, lat, lon, hours); ok {
		return local, nil
	}

	key := fingerprint(KindHourly, lat, lon, hours)
	if v, ok := s.cache.Get(key); ok {
		if pts, ok := v.([]Point); ok {
			return pts, nil
		}
	}

	var failures []ProviderFailure
	for _, p := range s.providers.Hourly {
		points, err := p.Hourly(ctx, lat, lon, hours)
		if err != nil {
			failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
			s.noteFailure(p.Name(), err)
			continue
		}
		s.cache.Set(key, points, s.forecastTTL)
		return points, nil
	}
	return nil, &AllFailedError{Kind: KindHourly, Failures: failures}
}

// GetDaily returns up to days Points, one per day, ordered ascending.
func (s *Service) GetDaily(ctx context.Context, lat, lon float64, days int) ([]Point, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}
	if local, ok := s.tryLocalList(KindDaily, lat, lon, days); ok {
		return local, nil
	}

	key := fingerprint(KindDaily, lat, lon, days)
	if v, ok := s.cache.Get(key); ok {
		if pts, ok := v.([]Point); ok {
			return pts, nil
		}
	}

	var failures []ProviderFailure
	for _, p := range s.providers.Daily {
		points, err := p.Daily(ctx, lat, lon, days)
		if err != nil {
			failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
			s.noteFailure(p.Name(), err)
			continue
		}
		s.cache.Set(key, points, s.forecastTTL)
		return points, nil
	}
	return nil, &AllFailedError{Kind: KindDaily, Failures: failures}
}

// tryLocalPoint consults the gate for single-point kinds. Local results are
// authoritative and skip the cache entirely; local errors only disable the
// short-circuit for this call.
func (s *Service) tryLocalPoint(kind Kind, lat, lon float64) (Point, bool) {
	if s.gate == nil || !s.gate.IsFresh(kind) {
		return Point{}, false
	}
	p, err := s.gate.Current(lat, lon)
	if err != nil {
		log.Printf("weather: local gate failed for %s, falling back: %v", kind, err)
		return Point{}, false
	}
	return p, true
}

func (s *Service) tryLocalList(kind Kind, lat, lon float64, extra int) ([]Point, bool) {
	if s.gate == nil || !s.gate.IsFresh(kind) {
		return nil, false
	}
	var (
		pts []Point
		err error
	)
	switch kind {
	case KindHourly:
		pts, err = s.gate.Hourly(lat, lon, extra)
	case KindDaily:
		pts, err = s.gate.Daily(lat, lon, extra)
	default:
		return nil, false
	}
	if err != nil {
		log.Printf("weather: local gate failed for %s, falling back: %v", kind, err)
		return nil, false
	}
	return pts, true
}

func (s *Service) noteFailure(provider string, err error) {
	if errors.Is(err, ErrQuota) {
		log.Printf("weather: provider %s quota exceeded", provider)
	} else {
		log.Printf("weather: provider %s failed: %v", provider, err)
	}
	if s.onFailure != nil {
		s.onFailure(provider, err)
	}
}

// fingerprint builds the cache key. Coordinates are rounded to three decimal
// places so nearby requests coalesce into one cache slot; extra < 0 means
// the kind takes no extra parameter.
func fingerprint(kind Kind, lat, lon float64, extra int) string {
	if extra >= 0 {
		return fmt.Sprintf("weather:%s:%.3f:%.3f:%d", kind, lat, lon, extra)
	}
	return fmt.Sprintf("weather:%s:%.3f:%.3f", kind, lat, lon)
}
