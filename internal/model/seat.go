package model

import "time"

// Seat status values.  A seat is AVAILABLE until a customer claims it,
// HELD while a claim is pending, and BOOKED once the hold has been
// confirmed.  Transitions between these values are decided by the
// booking package; the model layer only defines the vocabulary.
const (
	StatusAvailable = "AVAILABLE"
	StatusHeld      = "HELD"
	StatusBooked    = "BOOKED"
)

// Seat represents a single bookable seat of a show.  Seats are created
// in bulk when a show is set up and are never deleted or moved to a
// different show; all subsequent life is transitions of Status.
//
// Fields:
//  ID            – primary key (UUID string), immutable.
//  ShowID        – owning show, immutable.
//  RowLabel      – row of the seat (e.g. A, B), display ordering only.
//  SeatNumber    – position in the row (1-based), display ordering only.
//  Status        – AVAILABLE, HELD or BOOKED.
//  HolderID      – principal holding or having booked the seat; nil iff
//                  Status == AVAILABLE.
//  HoldExpiresAt – when a pending hold lapses; non-nil iff Status == HELD.
//  Token         – concurrency token, regenerated on every mutating
//                  write and compared on update to detect lost races.
type Seat struct {
	ID            string     // seats.id
	ShowID        string     // seats.show_id
	RowLabel      string     // seats.row_label
	SeatNumber    uint32     // seats.seat_number
	Status        string     // seats.status
	HolderID      *string    // seats.holder_id (nullable)
	HoldExpiresAt *time.Time // seats.hold_expires_at (nullable)
	Token         string     // seats.token
}

// HeldBy reports whether the seat is currently held by the given actor.
func (s *Seat) HeldBy(actor string) bool {
	return s.Status == StatusHeld && s.HolderID != nil && *s.HolderID == actor
}

// HoldExpired reports whether the seat carries a hold whose expiry has
// passed at the given instant.  Seats without a hold are never expired.
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.Status == StatusHeld && s.HoldExpiresAt != nil && !now.Before(*s.HoldExpiresAt)
}
