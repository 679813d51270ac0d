// Package seed bootstraps the schema and demo data so the service can
// be exercised immediately after startup.  Seeding is idempotent: it
// does nothing when a show already exists.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-seat-booking/internal/model"
	"github.com/iliyamo/movie-seat-booking/internal/repository"
)

const (
	demoRows        = 5
	demoSeatsPerRow = 10
)

// EnsureSchema creates the shows and seats tables when they do not
// exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const shows = `CREATE TABLE IF NOT EXISTS shows (
	    id         CHAR(36) PRIMARY KEY,
	    title      VARCHAR(255) NOT NULL,
	    starts_at  DATETIME NOT NULL,
	    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`
	const seats = `CREATE TABLE IF NOT EXISTS seats (
	    id              CHAR(36) PRIMARY KEY,
	    show_id         CHAR(36) NOT NULL,
	    row_label       VARCHAR(8) NOT NULL,
	    seat_number     INT UNSIGNED NOT NULL,
	    status          ENUM('AVAILABLE','HELD','BOOKED') NOT NULL DEFAULT 'AVAILABLE',
	    holder_id       VARCHAR(64) NULL,
	    hold_expires_at DATETIME NULL,
	    token           CHAR(36) NOT NULL,
	    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	    UNIQUE KEY uq_seats_show_row_number (show_id, row_label, seat_number),
	    KEY idx_seats_status_expiry (status, hold_expires_at),
	    CONSTRAINT fk_seats_show FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB`
	if _, err := db.ExecContext(ctx, shows); err != nil {
		return fmt.Errorf("create shows table: %w", err)
	}
	if _, err := db.ExecContext(ctx, seats); err != nil {
		return fmt.Errorf("create seats table: %w", err)
	}
	return nil
}

// SeedDemo inserts one demo show with a 5x10 seat grid when the catalog
// is empty.  Rows are labelled A through E, seats numbered 1 to 10.
func SeedDemo(ctx context.Context, shows *repository.ShowRepo, seats *repository.SeatRepo) error {
	exists, err := shows.HasAny(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	show := model.Show{
		ID:       uuid.NewString(),
		Title:    "Inception",
		StartsAt: time.Now().UTC().Add(2 * time.Hour),
	}
	if err := shows.Create(ctx, show); err != nil {
		return err
	}
	grid := make([]model.Seat, 0, demoRows*demoSeatsPerRow)
	for r := 0; r < demoRows; r++ {
		for n := 1; n <= demoSeatsPerRow; n++ {
			grid = append(grid, model.Seat{
				ID:         uuid.NewString(),
				ShowID:     show.ID,
				RowLabel:   string(rune('A' + r)),
				SeatNumber: uint32(n),
				Status:     model.StatusAvailable,
				Token:      uuid.NewString(),
			})
		}
	}
	if err := seats.CreateBulk(ctx, grid); err != nil {
		return err
	}
	log.Printf("seed: created show %q with %d seats", show.Title, len(grid))
	return nil
}
