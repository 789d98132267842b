package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/energy-estimator/internal/metrics"
	"github.com/i474232898/energy-estimator/internal/store"
	"github.com/i474232898/energy-estimator/internal/weather"
)

const probeTimeout = 30 * time.Second

// Probe checks that one upstream answers.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// GeocoderProbe resolves a well-known place name.
func GeocoderProbe(g weather.Geocoder, place string) Probe {
	return Probe{
		Name: g.Name(),
		Check: func(ctx context.Context) error {
			_, err := g.Geocode(ctx, place)
			return err
		},
	}
}

// ProviderProbe fetches a sample for fixed coordinates.
func ProviderProbe(p weather.Provider, coords weather.Coordinates) Probe {
	return Probe{
		Name: p.Name(),
		Check: func(ctx context.Context) error {
			_, err := p.Fetch(ctx, coords)
			return err
		},
	}
}

// Scheduler periodically probes upstreams and records the outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *store.MemoryStore
	probes    []Probe
	interval  time.Duration
}

// New creates a new Scheduler.
func New(probes []Probe, interval time.Duration, st *store.MemoryStore) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		store:     st,
		probes:    probes,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.probes) == 0 || s.interval <= 0 {
		log.Println("scheduler: probing disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs every probe concurrently and records the results.
func (s *Scheduler) RunOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range s.probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()

			start := time.Now()
			err := p.Check(ctx)
			result := store.ProbeResult{
				Upstream:  p.Name,
				CheckedAt: start.UTC(),
				OK:        err == nil,
				Latency:   time.Since(start),
			}
			if err != nil {
				result.Error = err.Error()
				metrics.ProbeFailures.WithLabelValues(p.Name).Inc()
				log.Printf("scheduler: probe %s failed: %v", p.Name, err)
			}
			s.store.SaveResult(result)
		}(p)
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
