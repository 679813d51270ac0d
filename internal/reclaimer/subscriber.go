package reclaimer

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-seat-booking/internal/lock"
)

// SeatReclaimer reclaims one seat if its hold has lapsed.
type SeatReclaimer interface {
	ReclaimSeat(ctx context.Context, seatID string) bool
}

// RunExpirySubscriber listens for Redis keyspace expiration events and
// reclaims the matching seat as soon as its hold key lapses, instead of
// waiting for the next sweep.  This path is a latency optimization
// only: the seat is re-checked against the store before anything is
// written, and the periodic sweep guarantees reclamation even when no
// event arrives.  Requires `notify-keyspace-events Ex` on the server.
//
// The function blocks until ctx is cancelled.
func RunExpirySubscriber(ctx context.Context, rdb *redis.Client, svc SeatReclaimer) {
	sub := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	defer func() { _ = sub.Close() }()
	log.Printf("reclaimer: subscribed to key expiration events")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !strings.HasPrefix(msg.Payload, lock.HoldKeyPrefix) {
				continue
			}
			seatID := strings.TrimPrefix(msg.Payload, lock.HoldKeyPrefix)
			if svc.ReclaimSeat(ctx, seatID) {
				log.Printf("reclaimer: released seat %s on hold key expiry", seatID)
			}
		}
	}
}
