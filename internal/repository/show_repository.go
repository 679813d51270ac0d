package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// ShowRepo provides read and setup access to the shows table.  Shows
// are created once at seeding time; the booking core never mutates them.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// GetByID fetches a single show.  It returns ErrShowNotFound when no
// such show exists.
func (r *ShowRepo) GetByID(ctx context.Context, id string) (model.Show, error) {
	const q = `SELECT id, title, starts_at, created_at FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Title, &s.StartsAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Show{}, ErrShowNotFound
	}
	return s, err
}

// List returns all shows ordered by start time ascending.
func (r *ShowRepo) List(ctx context.Context) ([]model.Show, error) {
	const q = `SELECT id, title, starts_at, created_at FROM shows ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shows := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.Title, &s.StartsAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

// Create inserts a new show.  Only used by the seeder.
func (r *ShowRepo) Create(ctx context.Context, s model.Show) error {
	const q = `INSERT INTO shows (id, title, starts_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Title, s.StartsAt.UTC())
	return err
}

// HasAny reports whether at least one show exists.  The seeder uses it
// to keep demo seeding idempotent across restarts.
func (r *ShowRepo) HasAny(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
