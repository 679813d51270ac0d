package lock

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the networked lock service.  Acquisition is a single
// SET key value NX PX, release an explicit DEL, so the semantics match
// the in-process variant across multiple nodes.
type Redis struct {
	rdb *redis.Client
}

// NewRedis returns a lock service backed by the given client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Acquire implements Service.
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, key, "locked", ttl).Result()
}

// Release implements Service.
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// TrackHold mirrors a seat hold into a Redis key that expires together
// with the hold.  The expiry subscriber reacts to the key's native
// expiration and reclaims the seat ahead of the periodic sweep.  The
// write is best-effort: on failure the sweep still reclaims eventually,
// so the error is only logged.
func (r *Redis) TrackHold(ctx context.Context, seatID string, ttl time.Duration) {
	if err := r.rdb.Set(ctx, HoldKeyPrefix+seatID, "held", ttl).Err(); err != nil {
		log.Printf("lock: track hold for seat %s failed: %v", seatID, err)
	}
}
