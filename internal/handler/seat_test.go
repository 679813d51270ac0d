package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-seat-booking/internal/booking"
	"github.com/iliyamo/movie-seat-booking/internal/clock"
	"github.com/iliyamo/movie-seat-booking/internal/lock"
	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/notify"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// memStore backs the booking service with a plain map so the handlers
// can be exercised without a database.
type memStore struct {
	seats map[string]model.Seat
}

func (m *memStore) GetSeat(_ context.Context, id string) (model.Seat, error) {
	s, ok := m.seats[id]
	if !ok {
		return model.Seat{}, repository.ErrSeatNotFound
	}
	return s, nil
}

func (m *memStore) UpdateSeat(_ context.Context, seat model.Seat, expectedToken string) (bool, error) {
	cur, ok := m.seats[seat.ID]
	if !ok || cur.Token != expectedToken {
		return false, nil
	}
	m.seats[seat.ID] = seat
	return true, nil
}

func (m *memStore) ExpiredSeats(_ context.Context, now time.Time) ([]model.Seat, error) {
	var out []model.Seat
	for _, s := range m.seats {
		if s.HoldExpired(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) WithTx(_ context.Context, fn func(tx repository.SeatTx) error) error {
	snapshot := make(map[string]model.Seat, len(m.seats))
	for id, s := range m.seats {
		snapshot[id] = s
	}
	if err := fn(memTx{m}); err != nil {
		m.seats = snapshot
		return err
	}
	return nil
}

type memTx struct{ store *memStore }

func (t memTx) SeatsByIDs(_ context.Context, ids []string) ([]model.Seat, error) {
	var out []model.Seat
	for _, id := range ids {
		if s, ok := t.store.seats[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t memTx) UpdateSeat(ctx context.Context, seat model.Seat, expectedToken string) (bool, error) {
	return t.store.UpdateSeat(ctx, seat, expectedToken)
}

func newTestHandler(seats ...model.Seat) (*SeatHandler, *memStore) {
	store := &memStore{seats: make(map[string]model.Seat)}
	for _, s := range seats {
		store.seats[s.ID] = s
	}
	svc := booking.NewService(store, lock.NewMemory(), notify.Nop{}, clock.NewSystem())
	return &SeatHandler{Booking: svc}, store
}

func doRequest(t *testing.T, handler echo.HandlerFunc, seatID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if seatID != "" {
		c.SetParamNames("id")
		c.SetParamValues(seatID)
	}
	require.NoError(t, handler(c))
	return rec
}

func freeSeat(id string) model.Seat {
	return model.Seat{ID: id, ShowID: "show1", RowLabel: "A", SeatNumber: 1, Status: model.StatusAvailable, Token: "t0"}
}

func TestHold(t *testing.T) {
	t.Parallel()

	t.Run("holds a free seat", func(t *testing.T) {
		h, store := newTestHandler(freeSeat("s1"))
		rec := doRequest(t, h.Hold, "s1", `{"actor":"alice"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.StatusHeld, store.seats["s1"].Status)
	})

	t.Run("conflict when the seat is taken", func(t *testing.T) {
		h, _ := newTestHandler(freeSeat("s1"))
		doRequest(t, h.Hold, "s1", `{"actor":"alice"}`)
		rec := doRequest(t, h.Hold, "s1", `{"actor":"bob"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing actor is a bad request", func(t *testing.T) {
		h, _ := newTestHandler(freeSeat("s1"))
		rec := doRequest(t, h.Hold, "s1", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown seat is a conflict", func(t *testing.T) {
		h, _ := newTestHandler()
		rec := doRequest(t, h.Hold, "ghost", `{"actor":"alice"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestBook(t *testing.T) {
	t.Parallel()

	t.Run("books an own hold", func(t *testing.T) {
		h, store := newTestHandler(freeSeat("s1"))
		doRequest(t, h.Hold, "s1", `{"actor":"alice"}`)
		rec := doRequest(t, h.Book, "s1", `{"actor":"alice"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.StatusBooked, store.seats["s1"].Status)
	})

	t.Run("booking someone else's hold fails with 400", func(t *testing.T) {
		h, _ := newTestHandler(freeSeat("s1"))
		doRequest(t, h.Hold, "s1", `{"actor":"alice"}`)
		rec := doRequest(t, h.Book, "s1", `{"actor":"bob"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRelease(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(freeSeat("s1"))
	doRequest(t, h.Hold, "s1", `{"actor":"alice"}`)

	rec := doRequest(t, h.Release, "s1", `{"actor":"bob"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h.Release, "s1", `{"actor":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusAvailable, store.seats["s1"].Status)
}

func TestHoldBulk(t *testing.T) {
	t.Parallel()

	t.Run("holds every listed seat", func(t *testing.T) {
		h, store := newTestHandler(freeSeat("s1"), freeSeat("s2"))
		rec := doRequest(t, h.HoldBulk, "", `{"actor":"alice","seat_ids":["s1","s2"]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.StatusHeld, store.seats["s1"].Status)
		assert.Equal(t, model.StatusHeld, store.seats["s2"].Status)
	})

	t.Run("one taken seat rejects the batch", func(t *testing.T) {
		h, store := newTestHandler(freeSeat("s1"), freeSeat("s2"))
		doRequest(t, h.Hold, "s2", `{"actor":"bob"}`)
		rec := doRequest(t, h.HoldBulk, "", `{"actor":"alice","seat_ids":["s1","s2"]}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, model.StatusAvailable, store.seats["s1"].Status)
	})

	t.Run("empty seat list is a bad request", func(t *testing.T) {
		h, _ := newTestHandler()
		rec := doRequest(t, h.HoldBulk, "", `{"actor":"alice","seat_ids":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookBulk(t *testing.T) {
	t.Parallel()

	h, store := newTestHandler(freeSeat("s1"), freeSeat("s2"))
	doRequest(t, h.HoldBulk, "", `{"actor":"alice","seat_ids":["s1","s2"]}`)
	rec := doRequest(t, h.BookBulk, "", `{"actor":"alice","seat_ids":["s1","s2"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusBooked, store.seats["s1"].Status)
	assert.Equal(t, model.StatusBooked, store.seats["s2"].Status)
}
