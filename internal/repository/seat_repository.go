package repository

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-seat-booking/internal/model"
)

// SeatRepo provides data access to the seats table.  It is the only
// component allowed to mutate seat state.  Every mutating statement is
// conditioned on the seat's current concurrency token so that two
// writers racing on the same row can never both succeed; the loser
// observes zero affected rows.  All timestamps are stored in UTC.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `id, show_id, row_label, seat_number, status, holder_id, hold_expires_at, token`

// scanSeat reads one seat row from the given scanner.
func scanSeat(scan func(dest ...interface{}) error) (model.Seat, error) {
	var s model.Seat
	var holder sql.NullString
	var expires sql.NullTime
	if err := scan(&s.ID, &s.ShowID, &s.RowLabel, &s.SeatNumber, &s.Status, &holder, &expires, &s.Token); err != nil {
		return model.Seat{}, err
	}
	if holder.Valid {
		h := holder.String
		s.HolderID = &h
	}
	if expires.Valid {
		e := expires.Time.UTC()
		s.HoldExpiresAt = &e
	}
	return s, nil
}

// GetSeat fetches a single seat by id.  It returns ErrSeatNotFound when
// no such seat exists.
func (r *SeatRepo) GetSeat(ctx context.Context, id string) (model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	s, err := scanSeat(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seat{}, ErrSeatNotFound
	}
	return s, err
}

// ListByShow retrieves all seats of a show ordered by row_label then
// seat_number for deterministic display output.
func (r *SeatRepo) ListByShow(ctx context.Context, showID string) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
	           WHERE show_id = ?
	           ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// UpdateSeat writes the seat's status, holder, hold expiry and new token,
// conditioned on the stored token still matching expectedToken.  It
// returns false with a nil error when the row was changed by another
// writer in the meantime (the optimistic-concurrency conflict case).
func (r *SeatRepo) UpdateSeat(ctx context.Context, seat model.Seat, expectedToken string) (bool, error) {
	return updateSeat(ctx, r.db, seat, expectedToken)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updateSeat(ctx context.Context, ex execer, seat model.Seat, expectedToken string) (bool, error) {
	const q = `UPDATE seats
	           SET status = ?, holder_id = ?, hold_expires_at = ?, token = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND token = ?`
	var holder interface{}
	if seat.HolderID != nil {
		holder = *seat.HolderID
	}
	var expires interface{}
	if seat.HoldExpiresAt != nil {
		expires = seat.HoldExpiresAt.UTC()
	}
	res, err := ex.ExecContext(ctx, q, seat.Status, holder, expires, seat.Token, seat.ID, expectedToken)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ExpiredSeats returns all seats whose hold has lapsed at the given
// instant.  The expiry reclaimer calls this once per sweep.
func (r *SeatRepo) ExpiredSeats(ctx context.Context, now time.Time) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
	           WHERE status = ? AND hold_expires_at <= ?`
	rows, err := r.db.QueryContext(ctx, q, model.StatusHeld, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// CountByStatus aggregates seat counts for a show.  The result backs
// the stats endpoint; it returns ErrShowNotFound for unknown shows.
func (r *SeatRepo) CountByStatus(ctx context.Context, showID string) (model.ShowStats, error) {
	const q = `SELECT
	             COUNT(*),
	             COALESCE(SUM(status = 'AVAILABLE'), 0),
	             COALESCE(SUM(status = 'HELD'), 0),
	             COALESCE(SUM(status = 'BOOKED'), 0)
	           FROM seats WHERE show_id = ?`
	stats := model.ShowStats{ShowID: showID}
	err := r.db.QueryRowContext(ctx, q, showID).Scan(&stats.Total, &stats.Available, &stats.Held, &stats.Booked)
	if err != nil {
		return model.ShowStats{}, err
	}
	if stats.Total == 0 {
		return model.ShowStats{}, ErrShowNotFound
	}
	return stats, nil
}

// CreateBulk inserts multiple seats in a single statement.  Only used
// at show setup time; seats are never inserted afterwards.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (id, show_id, row_label, seat_number, status, token) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.ID, s.ShowID, s.RowLabel, s.SeatNumber, s.Status, s.Token)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SeatTx is the transaction-scoped view of seat access handed to WithTx
// callbacks.  It is an interface so that services can be exercised
// against in-memory fakes in tests.
type SeatTx interface {
	// SeatsByIDs fetches all seats matching the given ids in one read,
	// ordered by id.  Missing ids do not error; callers compare counts.
	SeatsByIDs(ctx context.Context, ids []string) ([]model.Seat, error)
	// UpdateSeat performs the token-conditioned write within the transaction.
	UpdateSeat(ctx context.Context, seat model.Seat, expectedToken string) (bool, error)
}

// SeatTxRepo exposes seat access scoped to one database transaction.
// It is handed to WithTx callbacks; the surrounding transaction is
// committed or rolled back by WithTx itself.
type SeatTxRepo struct {
	tx *sql.Tx
}

// SeatsByIDs fetches all seats matching the given ids in one read,
// ordered by id.  Callers compare the returned count against the
// requested count to detect unknown seats; missing ids do not error.
func (t *SeatTxRepo) SeatsByIDs(ctx context.Context, ids []string) ([]model.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT ` + seatColumns + ` FROM seats
	      WHERE id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// UpdateSeat performs the token-conditioned write within the transaction.
func (t *SeatTxRepo) UpdateSeat(ctx context.Context, seat model.Seat, expectedToken string) (bool, error) {
	return updateSeat(ctx, t.tx, seat, expectedToken)
}

// WithTx runs fn inside one database transaction.  The transaction is
// rolled back when fn returns an error and committed otherwise.  Bulk
// operations rely on this for their all-or-nothing guarantee.
func (r *SeatRepo) WithTx(ctx context.Context, fn func(tx SeatTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&SeatTxRepo{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
