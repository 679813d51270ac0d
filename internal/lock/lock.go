// Package lock provides cross-process mutual exclusion keyed by string
// with a time-to-live.  It is an admission-control layer in front of the
// store's optimistic writes: it cuts wasted round-trips on hot seats but
// holds no business state, and correctness never depends on it — the
// concurrency token check in the store is the final authority.
package lock

import (
	"context"
	"time"
)

// SeatKey builds the lock key for a seat.
func SeatKey(seatID string) string {
	return "lock:seat:" + seatID
}

// HoldKeyPrefix prefixes the keys that mirror hold lifetimes into Redis.
// When such a key expires natively, the expiry subscriber reclaims the
// matching seat without waiting for the next sweep.
const HoldKeyPrefix = "hold:seat:"

// Service is the distributed lock contract.  Acquire returns true iff
// the caller now exclusively holds the lock until it is released or the
// ttl lapses.  Locks are never re-entrant.
type Service interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
