package booking

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-seat-booking/internal/clock"
	"github.com/iliyamo/movie-seat-booking/internal/lock"
	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/notify"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// SeatStore is the persistence contract the service operates against.
// *repository.SeatRepo satisfies it; tests substitute an in-memory fake.
type SeatStore interface {
	GetSeat(ctx context.Context, id string) (model.Seat, error)
	UpdateSeat(ctx context.Context, seat model.Seat, expectedToken string) (bool, error)
	ExpiredSeats(ctx context.Context, now time.Time) ([]model.Seat, error)
	WithTx(ctx context.Context, fn func(tx repository.SeatTx) error) error
}

// HoldTracker mirrors hold lifetimes into a store with native key
// expiry, feeding the reactive reclaim path.  It is optional; a nil
// tracker simply disables the optimization.
type HoldTracker interface {
	TrackHold(ctx context.Context, seatID string, ttl time.Duration)
}

// errBatchRejected aborts a bulk transaction for a business reason
// (unknown seat, illegal transition, lost write race).  It rolls the
// transaction back without being reported as an infrastructure fault.
var errBatchRejected = errors.New("batch rejected")

// Service applies the seat state machine against the store.  All
// operations return a plain success boolean: business rejections and
// lost optimistic-write races are deliberately indistinguishable, and
// infrastructure faults are logged and normalized to failure here so
// callers never need error handling to interpret an outcome.
type Service struct {
	seats   SeatStore
	locks   lock.Service
	notif   notify.Notifier
	clk     clock.Clock
	tracker HoldTracker
	holdTTL time.Duration
	lockTTL time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithHoldTTL overrides how long a claim holds a seat.
func WithHoldTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithLockTTL overrides the admission-lock lifetime for bulk operations.
func WithLockTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

// WithHoldTracker enables reactive reclamation of expired holds.
func WithHoldTracker(t HoldTracker) Option {
	return func(s *Service) { s.tracker = t }
}

const (
	defaultHoldTTL = time.Minute
	defaultLockTTL = 5 * time.Second
)

// NewService wires a booking service.  locks guards bulk operations
// against hot contention; notif receives one SeatChanged per committed
// seat write plus a StatsChanged hint per affected show.
func NewService(seats SeatStore, locks lock.Service, notif notify.Notifier, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		seats:   seats,
		locks:   locks,
		notif:   notif,
		clk:     clk,
		holdTTL: defaultHoldTTL,
		lockTTL: defaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Claim places a bounded hold on one seat for the actor.  It succeeds
// on an available seat, an expired hold (takeover) or the actor's own
// live hold (refresh).
func (s *Service) Claim(ctx context.Context, seatID, actor string) bool {
	return s.apply(ctx, seatID, actor, ActionClaim)
}

// Confirm turns the actor's live hold on the seat into a booking.
// Confirming an already booked seat by its owner succeeds idempotently.
func (s *Service) Confirm(ctx context.Context, seatID, actor string) bool {
	return s.apply(ctx, seatID, actor, ActionConfirm)
}

// Release returns the actor's held seat to the free state.
func (s *Service) Release(ctx context.Context, seatID, actor string) bool {
	return s.apply(ctx, seatID, actor, ActionRelease)
}

// apply runs one fetch → evaluate → conditional write cycle.  There is
// no retry: losing the write race reads exactly like a rejection, and
// both mean "try another seat".
func (s *Service) apply(ctx context.Context, seatID, actor string, action Action) bool {
	seat, err := s.seats.GetSeat(ctx, seatID)
	if err != nil {
		if !errors.Is(err, repository.ErrSeatNotFound) {
			log.Printf("booking: fetch seat %s: %v", seatID, err)
		}
		return false
	}
	now := s.clk.Now()
	next, ok := Transition(seat, action, actor, now, s.holdTTL)
	if !ok {
		return false
	}
	if action == ActionConfirm && seat.Status == model.StatusBooked {
		// Idempotent re-confirm: nothing to write, nothing to announce.
		return true
	}
	next.Token = uuid.NewString()
	written, err := s.seats.UpdateSeat(ctx, next, seat.Token)
	if err != nil {
		log.Printf("booking: update seat %s: %v", seatID, err)
		return false
	}
	if !written {
		return false
	}
	if action == ActionClaim && s.tracker != nil {
		s.tracker.TrackHold(ctx, seatID, s.holdTTL)
	}
	s.announce(next)
	return true
}

// ClaimAll holds every listed seat for the actor, or none of them.
func (s *Service) ClaimAll(ctx context.Context, seatIDs []string, actor string) bool {
	return s.applyAll(ctx, seatIDs, actor, ActionClaim)
}

// ConfirmAll books every listed seat held by the actor, or none of them.
func (s *Service) ConfirmAll(ctx context.Context, seatIDs []string, actor string) bool {
	return s.applyAll(ctx, seatIDs, actor, ActionConfirm)
}

// ReleaseAll frees every listed seat held by the actor, or none of them.
func (s *Service) ReleaseAll(ctx context.Context, seatIDs []string, actor string) bool {
	return s.applyAll(ctx, seatIDs, actor, ActionRelease)
}

// applyAll treats the seat set as one indivisible unit.  The id list is
// deduplicated and sorted first; that canonical order is both the lock
// and the fetch order for every caller, so two batches with overlapping
// seat sets can never deadlock on each other.  If any single seat is
// unknown or rejects its transition, the whole transaction rolls back
// and no seat is mutated.
func (s *Service) applyAll(ctx context.Context, seatIDs []string, actor string, action Action) bool {
	ids := dedupeSorted(seatIDs)
	if len(ids) == 0 {
		return false
	}
	release := s.acquireLocks(ctx, ids)
	defer release()

	now := s.clk.Now()
	var updated []model.Seat
	err := s.seats.WithTx(ctx, func(tx repository.SeatTx) error {
		seats, err := tx.SeatsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(seats) != len(ids) {
			// At least one id does not exist; no partial processing.
			return errBatchRejected
		}
		for _, seat := range seats {
			next, ok := Transition(seat, action, actor, now, s.holdTTL)
			if !ok {
				return errBatchRejected
			}
			if action == ActionConfirm && seat.Status == model.StatusBooked {
				// Already booked by this actor; keep it untouched.
				continue
			}
			next.Token = uuid.NewString()
			written, err := tx.UpdateSeat(ctx, next, seat.Token)
			if err != nil {
				return err
			}
			if !written {
				// Another writer won between our read and write.
				return errBatchRejected
			}
			updated = append(updated, next)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errBatchRejected) {
			log.Printf("booking: bulk %v failed: %v", ids, err)
		}
		return false
	}
	if action == ActionClaim && s.tracker != nil {
		for _, seat := range updated {
			s.tracker.TrackHold(ctx, seat.ID, s.holdTTL)
		}
	}
	s.announceAll(updated)
	return true
}

// acquireLocks takes the per-seat admission locks in canonical order
// and returns a function releasing whatever was acquired.  A lock that
// is already held by someone else is skipped rather than failing the
// batch, and lock-service errors are only logged: this layer trims
// wasted store round-trips under contention, while the token check in
// the transaction remains the final authority.
func (s *Service) acquireLocks(ctx context.Context, ids []string) func() {
	acquired := make([]string, 0, len(ids))
	for _, id := range ids {
		key := lock.SeatKey(id)
		ok, err := s.locks.Acquire(ctx, key, s.lockTTL)
		if err != nil {
			log.Printf("booking: acquire lock %s: %v", key, err)
			continue
		}
		if ok {
			acquired = append(acquired, key)
		}
	}
	return func() {
		for _, key := range acquired {
			if err := s.locks.Release(ctx, key); err != nil {
				log.Printf("booking: release lock %s: %v", key, err)
			}
		}
	}
}

// ReclaimExpired returns every seat whose hold has lapsed to the free
// state and reports how many were reclaimed.  Each seat is written
// individually under its token check, so a seat that gets confirmed or
// re-claimed mid-sweep is simply skipped.  The expiry reclaimer calls
// this once per sweep.
func (s *Service) ReclaimExpired(ctx context.Context) (int, error) {
	now := s.clk.Now()
	seats, err := s.seats.ExpiredSeats(ctx, now)
	if err != nil {
		return 0, err
	}
	reclaimed := 0
	shows := make(map[string]struct{})
	for _, seat := range seats {
		next, ok := Transition(seat, ActionReclaim, "", now, 0)
		if !ok {
			continue
		}
		next.Token = uuid.NewString()
		written, err := s.seats.UpdateSeat(ctx, next, seat.Token)
		if err != nil {
			log.Printf("booking: reclaim seat %s: %v", seat.ID, err)
			continue
		}
		if !written {
			continue
		}
		reclaimed++
		shows[next.ShowID] = struct{}{}
		s.notif.SeatChanged(seatEvent(next))
	}
	for showID := range shows {
		s.notif.StatsChanged(showID)
	}
	return reclaimed, nil
}

// ReclaimSeat reclaims a single seat if its hold has lapsed.  The Redis
// expiry subscriber uses it to react to a hold key expiring ahead of
// the next sweep; the end state is identical to what the sweep would
// produce.
func (s *Service) ReclaimSeat(ctx context.Context, seatID string) bool {
	return s.apply(ctx, seatID, "", ActionReclaim)
}

func (s *Service) announce(seat model.Seat) {
	s.notif.SeatChanged(seatEvent(seat))
	s.notif.StatsChanged(seat.ShowID)
}

func (s *Service) announceAll(seats []model.Seat) {
	shows := make(map[string]struct{})
	for _, seat := range seats {
		s.notif.SeatChanged(seatEvent(seat))
		shows[seat.ShowID] = struct{}{}
	}
	for showID := range shows {
		s.notif.StatsChanged(showID)
	}
}

func seatEvent(seat model.Seat) notify.SeatChangedEvent {
	return notify.SeatChangedEvent{
		SeatID:   seat.ID,
		ShowID:   seat.ShowID,
		Status:   seat.Status,
		HolderID: seat.HolderID,
	}
}

// dedupeSorted returns the unique ids in ascending order.
func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
