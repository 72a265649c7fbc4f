// Package scheduler wires up the cron job that periodically closes job
// postings whose application deadline has passed.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"jobmate/hiring-service/internal/model"
)

// Sweeper closes expired jobs. *jobs.Catalog satisfies it.
type Sweeper interface {
	CloseExpired(ctx context.Context) ([]model.Job, error)
}

// Scheduler wraps robfig/cron and manages the deadline sweep.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string // cron spec, e.g. "@every 1h"
	wg      sync.WaitGroup
}

// New creates a Scheduler that sweeps on spec.
func New(sweeper Sweeper, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		sweeper: sweeper,
		spec:    spec,
	}
}

// Start registers the sweep and starts the scheduler. It also runs one sweep
// immediately so postings that expired while the service was down close
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sweep(ctx)
	}()
	return nil
}

// Stop shuts down the scheduler and waits for running sweeps to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) sweep(ctx context.Context) {
	closed, err := s.sweeper.CloseExpired(ctx)
	if err != nil {
		log.Printf("[scheduler] Deadline sweep error: %v", err)
		return
	}
	if len(closed) > 0 {
		log.Printf("[scheduler] Closed %d expired job(s)", len(closed))
	}
}
