package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

// ShowHandler exposes the read-only show catalog and per-show seat
// statistics.  Stats are recomputed from the seats table on every
// request; StatsChanged notifications only tell clients when a re-fetch
// is worthwhile.
type ShowHandler struct {
	ShowRepo *repository.ShowRepo
	SeatRepo *repository.SeatRepo
}

// NewShowHandler constructs a ShowHandler.
func NewShowHandler(showRepo *repository.ShowRepo, seatRepo *repository.SeatRepo) *ShowHandler {
	if showRepo == nil || seatRepo == nil {
		panic("nil repository passed to NewShowHandler")
	}
	return &ShowHandler{ShowRepo: showRepo, SeatRepo: seatRepo}
}

// GetShows handles GET /v1/shows.  It lists all shows ordered by start time.
func (h *ShowHandler) GetShows(c echo.Context) error {
	shows, err := h.ShowRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type showView struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		StartsAt string `json:"starts_at"`
	}
	views := make([]showView, 0, len(shows))
	for _, s := range shows {
		views = append(views, showView{
			ID:       s.ID,
			Title:    s.Title,
			StartsAt: s.StartsAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, views)
}

// GetStats handles GET /v1/shows/:id/stats.  It returns the aggregate
// seat counts of a show, or 404 when the show has no seats.
func (h *ShowHandler) GetStats(c echo.Context) error {
	showID := c.Param("id")
	if showID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	stats, err := h.SeatRepo.CountByStatus(c.Request().Context(), showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, stats)
}
