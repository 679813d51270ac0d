// Package notify is the outbound notification port of the booking core.
// Components announce seat and aggregate changes through the Notifier
// interface; delivery is best-effort and fire-and-forget so the write
// path never blocks on a slow transport.  Consumers must treat events
// as hints and re-read current state rather than trust delivery order.
package notify

// SeatChangedEvent announces that a seat reached a new status.
type SeatChangedEvent struct {
	SeatID   string  `json:"seat_id"`
	ShowID   string  `json:"show_id"`
	Status   string  `json:"status"`
	HolderID *string `json:"holder_id,omitempty"`
}

// StatsChangedEvent hints that a show's aggregate seat counts changed.
// It carries no counts; consumers re-fetch the stats endpoint.
type StatsChangedEvent struct {
	ShowID string `json:"show_id"`
}

// Notifier is called by the booking service and the expiry reclaimer
// after each committed state change.  Implementations must tolerate
// concurrent calls and must never block or fail the caller.
type Notifier interface {
	SeatChanged(ev SeatChangedEvent)
	StatsChanged(showID string)
}

// Nop is a Notifier that discards all events.  Useful in tests and
// when no broker is configured.
type Nop struct{}

func (Nop) SeatChanged(SeatChangedEvent) {}

func (Nop) StatsChanged(string) {}
