package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/movie-seat-booking/internal/handler"
)

// RegisterRoutes registers the health check and all versioned API
// routes on the provided Echo instance.  The idempotency middleware is
// applied only to the seat operation group, where retried POSTs would
// otherwise double-submit; read endpoints stay untouched.
func RegisterRoutes(e *echo.Echo, shows *handler.ShowHandler, seats *handler.SeatHandler, idempotency echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Read-only catalog endpoints.
	e.GET("/v1/shows", shows.GetShows)
	e.GET("/v1/shows/:id/seats", seats.GetSeats)
	e.GET("/v1/shows/:id/stats", shows.GetStats)

	// Seat operations.  Single-seat routes address one seat by id; bulk
	// routes take a seat_ids array and succeed or fail as one unit.
	g := e.Group("/v1/seats")
	if idempotency != nil {
		g.Use(idempotency)
	}
	g.POST("/hold", seats.HoldBulk)
	g.POST("/book", seats.BookBulk)
	g.POST("/release", seats.ReleaseBulk)
	g.POST("/:id/hold", seats.Hold)
	g.POST("/:id/book", seats.Book)
	g.POST("/:id/release", seats.Release)
}
