package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/sunshinelabs/sunshined/internal/config"
	"github.com/sunshinelabs/sunshined/internal/weather"
)

// Scheduler periodically refreshes the forecast cache for the tracked
// location. Triggers share the service's coalescing, so a scheduled run and
// a manual one never fetch twice.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	prefs     *config.Preferences
	interval  time.Duration
}

// New creates a new Scheduler.
func New(prefs *config.Preferences, interval time.Duration, service *weather.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		prefs:     prefs,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
// The first run fires immediately so the cache is warm at startup.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(func() {
		loc := s.prefs.Location()
		log.Printf("scheduler: running forecast refresh for %s", loc.Key())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := s.service.Refresh(ctx, loc)
		if err != nil {
			log.Printf("scheduler: refresh failed for %s: %v", loc.Key(), err)
			return
		}
		log.Printf("scheduler: refreshed %s: %d rows", loc.Key(), n)
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
