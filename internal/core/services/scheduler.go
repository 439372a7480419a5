package services

import (
	"context"
	"sync"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
	"github.com/alcove-dev/alcove/internal/logger"
)

// defaultImportInterval matches a daily ingestion cadence.
const defaultImportInterval = 24 * time.Hour

// Scheduler triggers orchestrated imports on a fixed interval.
// Each tick invokes the importer with an explicit run context rather than
// mutating shared scheduling state. The importer's own run log records
// every execution, so the scheduler keeps no state of its own.
type Scheduler struct {
	importer driving.Importer
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. interval <= 0 selects the daily default.
func NewScheduler(importer driving.Importer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultImportInterval
	}
	return &Scheduler{importer: importer, interval: interval}
}

// Start begins the scheduler loop. It returns immediately; ticks run on a
// background goroutine until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop shuts the scheduler down and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("scheduler started (interval %s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one scheduled import over all enabled plugins.
func (s *Scheduler) tick(ctx context.Context) {
	rc := domain.RunContext{
		InvokedAt: time.Now().UTC(),
		Trigger:   domain.TriggerScheduled,
	}
	if _, err := s.importer.Run(ctx, rc); err != nil {
		logger.Warn("scheduled import: %v", err)
	}
}
