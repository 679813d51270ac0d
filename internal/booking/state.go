// Package booking implements the seat booking core: the pure seat state
// machine and the service that applies it against the store under
// optimistic concurrency.
package booking

import (
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// Action is a requested seat transition.
type Action int

const (
	// ActionClaim places or refreshes a bounded hold on a seat.
	ActionClaim Action = iota
	// ActionConfirm turns a live hold into a permanent booking.
	ActionConfirm
	// ActionRelease voluntarily returns a held seat to the free state.
	ActionRelease
	// ActionReclaim is the system-initiated return of an expired hold.
	// It carries no actor check.
	ActionReclaim
)

// Transition decides whether the action is legal for the seat at the
// given instant and, if so, what the seat becomes.  It is a pure
// function: the input seat is never mutated, and rejections carry no
// further information. A caller must not learn more about contested
// state than "you didn't get it".
//
// The returned seat keeps the old concurrency token; the caller assigns
// a fresh one when it writes.
func Transition(seat model.Seat, action Action, actor string, now time.Time, ttl time.Duration) (model.Seat, bool) {
	switch action {
	case ActionClaim:
		return claim(seat, actor, now, ttl)
	case ActionConfirm:
		return confirm(seat, actor, now)
	case ActionRelease:
		return release(seat, actor)
	case ActionReclaim:
		return reclaim(seat, now)
	}
	return seat, false
}

func claim(seat model.Seat, actor string, now time.Time, ttl time.Duration) (model.Seat, bool) {
	switch seat.Status {
	case model.StatusAvailable:
		return held(seat, actor, now.Add(ttl)), true
	case model.StatusHeld:
		// An expired hold counts as available: any actor may take over.
		// The current owner may also refresh a live hold.
		if seat.HoldExpired(now) || seat.HeldBy(actor) {
			return held(seat, actor, now.Add(ttl)), true
		}
		return seat, false
	}
	return seat, false
}

func confirm(seat model.Seat, actor string, now time.Time) (model.Seat, bool) {
	// Confirming a seat one already booked succeeds idempotently and
	// leaves the seat untouched.
	if seat.Status == model.StatusBooked && seat.HolderID != nil && *seat.HolderID == actor {
		return seat, true
	}
	if !seat.HeldBy(actor) || seat.HoldExpired(now) {
		return seat, false
	}
	next := seat
	next.Status = model.StatusBooked
	next.HoldExpiresAt = nil
	return next, true
}

func release(seat model.Seat, actor string) (model.Seat, bool) {
	if !seat.HeldBy(actor) {
		return seat, false
	}
	return available(seat), true
}

func reclaim(seat model.Seat, now time.Time) (model.Seat, bool) {
	if !seat.HoldExpired(now) {
		return seat, false
	}
	return available(seat), true
}

func held(seat model.Seat, actor string, expiry time.Time) model.Seat {
	next := seat
	next.Status = model.StatusHeld
	next.HolderID = &actor
	e := expiry.UTC()
	next.HoldExpiresAt = &e
	return next
}

func available(seat model.Seat) model.Seat {
	next := seat
	next.Status = model.StatusAvailable
	next.HolderID = nil
	next.HoldExpiresAt = nil
	return next
}
