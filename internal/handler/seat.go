package handler

import (
	"errors"   // for errors.Is comparisons
	"net/http" // HTTP status codes
	"time"     // formatting hold expiry timestamps

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// SeatHandler exposes seat reads and the claim/confirm/release
// operations.  Writes go through the booking service, which reports
// every business outcome as a plain boolean; this layer only translates
// booleans into status codes.  A failed hold or release maps to 409
// Conflict, a failed booking to 400 Bad Request — deliberately
// ambiguous between "expired" and "not yours".
type SeatHandler struct {
	Booking  *booking.Service // claim/confirm/release operations
	SeatRepo *repository.SeatRepo
	ShowRepo *repository.ShowRepo
}

// NewSeatHandler constructs a SeatHandler.  All dependencies must be non-nil.
func NewSeatHandler(svc *booking.Service, seatRepo *repository.SeatRepo, showRepo *repository.ShowRepo) *SeatHandler {
	if svc == nil || seatRepo == nil || showRepo == nil {
		panic("nil dependency passed to NewSeatHandler")
	}
	return &SeatHandler{Booking: svc, SeatRepo: seatRepo, ShowRepo: showRepo}
}

// seatView is the JSON shape of one seat as returned to clients.
type seatView struct {
	ID            string  `json:"id"`
	ShowID        string  `json:"show_id"`
	RowLabel      string  `json:"row_label"`
	SeatNumber    uint32  `json:"seat_number"`
	Status        string  `json:"status"`
	HolderID      *string `json:"holder_id,omitempty"`
	HoldExpiresAt *string `json:"hold_expires_at,omitempty"`
}

func toSeatView(s model.Seat) seatView {
	v := seatView{
		ID:         s.ID,
		ShowID:     s.ShowID,
		RowLabel:   s.RowLabel,
		SeatNumber: s.SeatNumber,
		Status:     s.Status,
		HolderID:   s.HolderID,
	}
	if s.HoldExpiresAt != nil {
		iso := s.HoldExpiresAt.UTC().Format(time.RFC3339)
		v.HoldExpiresAt = &iso
	}
	return v
}

// GetSeats handles GET /v1/shows/:id/seats.  It returns all seats of a
// show ordered by row and number, or 404 when the show does not exist.
func (h *SeatHandler) GetSeats(c echo.Context) error {
	showID := c.Param("id")
	if showID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	if _, err := h.ShowRepo.GetByID(ctx, showID); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.SeatRepo.ListByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]seatView, 0, len(seats))
	for _, s := range seats {
		views = append(views, toSeatView(s))
	}
	return c.JSON(http.StatusOK, views)
}

// actorRequest is the body shared by the single-seat operations.
type actorRequest struct {
	Actor string `json:"actor"`
}

// bulkRequest is the body shared by the bulk operations.
type bulkRequest struct {
	Actor   string   `json:"actor"`
	SeatIDs []string `json:"seat_ids"`
}

func bindActor(c echo.Context) (string, bool) {
	var body actorRequest
	if err := c.Bind(&body); err != nil || body.Actor == "" {
		return "", false
	}
	return body.Actor, true
}

func bindBulk(c echo.Context) (bulkRequest, bool) {
	var body bulkRequest
	if err := c.Bind(&body); err != nil || body.Actor == "" || len(body.SeatIDs) == 0 {
		return bulkRequest{}, false
	}
	return body, true
}

// Hold handles POST /v1/seats/:id/hold.  On success the seat is held
// for the actor until the hold TTL lapses.  A 409 response covers every
// negative outcome: unknown seat, seat taken, or a lost write race.
func (h *SeatHandler) Hold(c echo.Context) error {
	actor, ok := bindActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor is required"})
	}
	if !h.Booking.Claim(c.Request().Context(), c.Param("id"), actor) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not available"})
	}
	return c.JSON(http.StatusOK, echo.Map{"held": true})
}

// Book handles POST /v1/seats/:id/book.  It confirms the actor's live
// hold.  A 400 response covers every negative outcome: the hold may
// have expired or belong to someone else.
func (h *SeatHandler) Book(c echo.Context) error {
	actor, ok := bindActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor is required"})
	}
	if !h.Booking.Confirm(c.Request().Context(), c.Param("id"), actor) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book seat; hold expired or held by someone else"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booked": true})
}

// Release handles POST /v1/seats/:id/release.  Only the current holder
// can release a seat.
func (h *SeatHandler) Release(c echo.Context) error {
	actor, ok := bindActor(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor is required"})
	}
	if !h.Booking.Release(c.Request().Context(), c.Param("id"), actor) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not held by you"})
	}
	return c.JSON(http.StatusOK, echo.Map{"released": true})
}

// HoldBulk handles POST /v1/seats/hold.  All listed seats are held for
// the actor, or none of them are.
func (h *SeatHandler) HoldBulk(c echo.Context) error {
	body, ok := bindBulk(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor and seat_ids are required"})
	}
	if !h.Booking.ClaimAll(c.Request().Context(), body.SeatIDs, body.Actor) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"held": true, "seat_ids": body.SeatIDs})
}

// BookBulk handles POST /v1/seats/book.  All listed seats are booked,
// or none of them are.
func (h *SeatHandler) BookBulk(c echo.Context) error {
	body, ok := bindBulk(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor and seat_ids are required"})
	}
	if !h.Booking.ConfirmAll(c.Request().Context(), body.SeatIDs, body.Actor) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book seats; a hold expired or belongs to someone else"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booked": true, "seat_ids": body.SeatIDs})
}

// ReleaseBulk handles POST /v1/seats/release.  All listed seats are
// released, or none of them are.
func (h *SeatHandler) ReleaseBulk(c echo.Context) error {
	body, ok := bindBulk(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor and seat_ids are required"})
	}
	if !h.Booking.ReleaseAll(c.Request().Context(), body.SeatIDs, body.Actor) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are not held by you"})
	}
	return c.JSON(http.StatusOK, echo.Map{"released": true, "seat_ids": body.SeatIDs})
}
