package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/5ivekayri/DWv2/internal/weather"
)

// Scheduler periodically resolves current weather for the configured
// locations so interactive requests mostly hit a warm cache. A warm run is
// just a normal resolution; the result lands in the TTL cache through the
// ordinary orchestrator path.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	locations []weather.Location
	interval  time.Duration
}

// New creates a Scheduler.
func New(locations []weather.Location, interval time.Duration, service *weather.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic warm job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no warm locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Println("scheduler: warming weather cache")
		for _, loc := range s.locations {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := s.service.GetCurrent(ctx, loc.Lat, loc.Lon); err != nil {
				log.Printf("scheduler: warm fetch failed for %.3f,%.3f: %v", loc.Lat, loc.Lon, err)
			}
			cancel()
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
