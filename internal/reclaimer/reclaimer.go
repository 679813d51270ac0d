// Package reclaimer runs the autonomous expiry sweep: a periodic task,
// independent of request handling, that returns reserved-but-expired
// seats to the free state.
package reclaimer

import (
	"context"
	"log"
	"time"
)

// Sweeper is the slice of the booking service the reclaimer needs.
type Sweeper interface {
	ReclaimExpired(ctx context.Context) (int, error)
}

// Reclaimer sweeps expired seat holds on a fixed interval.  A failed
// sweep is logged and the next scheduled sweep retries unconditionally;
// the loop only stops when its context is cancelled, and never cancels
// a sweep that is already in flight.
type Reclaimer struct {
	svc      Sweeper
	interval time.Duration
}

// New builds a reclaimer sweeping at the given interval.
func New(svc Sweeper, interval time.Duration) *Reclaimer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Reclaimer{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled.  Call it on its own goroutine.
func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Printf("reclaimer: sweeping every %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reclaimer: stopping")
			return
		case <-ticker.C:
			n, err := r.svc.ReclaimExpired(ctx)
			if err != nil {
				log.Printf("reclaimer: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reclaimer: released %d expired seat holds", n)
			}
		}
	}
}
