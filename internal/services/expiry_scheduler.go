package services

import (
	"context"
	"errors"
	"log"
	"time"

	"zibana-backend/internal/metrics"
	"zibana-backend/internal/models"
)

// ExpiryScheduler periodically scans for active overrides whose expiry
// timestamp has passed and transitions them to expired through the same
// restore machinery as a manual revert. Each target is an independent unit:
// one failing handler never blocks the rest of the sweep, and a sweep that
// dies mid-batch simply resumes on the next tick.
type ExpiryScheduler struct {
	Service  *OverrideService
	Interval time.Duration
	Now      func() time.Time

	stop chan struct{}
}

func NewExpiryScheduler(service *OverrideService, interval time.Duration) *ExpiryScheduler {
	return &ExpiryScheduler{
		Service:  service,
		Interval: interval,
		Now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called
func (s *ExpiryScheduler) Start() {
	ticker := time.NewTicker(s.Interval)
	log.Printf("[ExpirySweep] started (interval: %v)", s.Interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunSweep(context.Background())
			case <-s.stop:
				log.Println("[ExpirySweep] stopped")
				return
			}
		}
	}()
}

// Stop terminates the sweep loop. An in-flight sweep finishes its batch.
func (s *ExpiryScheduler) Stop() {
	close(s.stop)
}

// RunSweep executes one scan-and-transition pass and returns how many
// overrides were expired and how many targets failed.
func (s *ExpiryScheduler) RunSweep(ctx context.Context) (expired, failed int) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	due, err := s.Service.Store.ListExpiredDue(ctx, s.Now())
	if err != nil {
		log.Printf("[ExpirySweep] scan failed: %v", err)
		return 0, 0
	}

	for _, o := range due {
		if _, err := s.Service.Expire(ctx, o); err != nil {
			var conflict *models.ConflictError
			if errors.As(err, &conflict) {
				// A manual revert (or another instance's sweep) won the
				// race; nothing left to do for this override.
				continue
			}
			// Handler failure: the override stays active and is retried
			// next tick.
			failed++
			metrics.SweepFailures.Inc()
			log.Printf("[ExpirySweep] expiry failed for override %s (user %s, %s): %v",
				o.ID, o.TargetUserID, o.ActionType, err)
			continue
		}
		expired++
	}

	if expired > 0 || failed > 0 {
		log.Printf("[ExpirySweep] pass complete: %d expired, %d failed", expired, failed)
	}
	return expired, failed
}
