package bookings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Store persists bookings
type Store interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// OverlapCount counts non-cancelled bookings for a car that intersect
	// the [pickup, return] window
	OverlapCount(ctx context.Context, carID string, pickup, ret time.Time) (int64, error)
	// CancelStalePending cancels pending bookings whose pickup date has
	// passed, returning how many were swept
	CancelStalePending(ctx context.Context, now time.Time) (int64, error)
	// OwnerStats aggregates the dashboard numbers for an owner
	OwnerStats(ctx context.Context, ownerID string, monthStart time.Time) (*DashboardStats, error)
}

const bookingColumns = `id, car_id, renter_id, owner_id, pickup_date,
	return_date, status, price, created_at`

// SQLStore implements Store over database/sql
type SQLStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewSQLStore creates a SQL-backed booking store. metrics may be nil.
func NewSQLStore(db *sql.DB, metrics *observability.Metrics) *SQLStore {
	return &SQLStore{db: db, metrics: metrics}
}

func (s *SQLStore) observe(operation string, start time.Time, err *error) {
	if s.metrics != nil {
		s.metrics.ObserveStorage(operation, start, *err)
	}
}

// EnsureSchema creates the bookings table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id          TEXT PRIMARY KEY,
			car_id      TEXT NOT NULL,
			renter_id   TEXT NOT NULL,
			owner_id    TEXT NOT NULL,
			pickup_date TIMESTAMP NOT NULL,
			return_date TIMESTAMP NOT NULL,
			status      TEXT NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}
	return nil
}

// Create inserts a booking
func (s *SQLStore) Create(ctx context.Context, booking *Booking) (err error) {
	defer s.observe("bookings_create", time.Now(), &err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, booking.ID, booking.CarID, booking.RenterID, booking.OwnerID,
		booking.PickupDate, booking.ReturnDate, string(booking.Status),
		booking.Price, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// GetByID resolves a booking by id
func (s *SQLStore) GetByID(ctx context.Context, id string) (booking *Booking, err error) {
	defer s.observe("bookings_get_by_id", time.Now(), &err)

	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = $1
	`, id)
	booking, err = scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, auth.E(auth.KindNotFound, "booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return booking, nil
}

// ListByRenter lists a renter's bookings, newest first
func (s *SQLStore) ListByRenter(ctx context.Context, renterID string) (out []*Booking, err error) {
	defer s.observe("bookings_list_by_renter", time.Now(), &err)

	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE renter_id = $1 ORDER BY created_at DESC
	`, renterID)
}

// ListByOwner lists bookings on an owner's cars, newest first
func (s *SQLStore) ListByOwner(ctx context.Context, ownerID string) (out []*Booking, err error) {
	defer s.observe("bookings_list_by_owner", time.Now(), &err)

	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
}

// UpdateStatus sets the booking status
func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status Status) (err error) {
	defer s.observe("bookings_update_status", time.Now(), &err)

	_, err = s.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// OverlapCount counts non-cancelled bookings intersecting the window
func (s *SQLStore) OverlapCount(ctx context.Context, carID string, pickup, ret time.Time) (count int64, err error) {
	defer s.observe("bookings_overlap_count", time.Now(), &err)

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE car_id = $1 AND status != $2
		  AND pickup_date <= $3 AND return_date >= $4
	`, carID, string(StatusCancelled), ret, pickup).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlaps: %w", err)
	}
	return count, nil
}

// CancelStalePending cancels pending bookings whose pickup has passed
func (s *SQLStore) CancelStalePending(ctx context.Context, now time.Time) (swept int64, err error) {
	defer s.observe("bookings_sweep_stale", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1
		WHERE status = $2 AND pickup_date < $3
	`, string(StatusCancelled), string(StatusPending), now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale bookings: %w", err)
	}
	return res.RowsAffected()
}

// OwnerStats aggregates dashboard numbers. Revenue counts confirmed
// bookings created since monthStart.
func (s *SQLStore) OwnerStats(ctx context.Context, ownerID string, monthStart time.Time) (stats *DashboardStats, err error) {
	defer s.observe("bookings_owner_stats", time.Now(), &err)

	stats = &DashboardStats{}
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0)
		FROM bookings WHERE owner_id = $3
	`, string(StatusPending), string(StatusConfirmed), ownerID).
		Scan(&stats.TotalBookings, &stats.PendingBookings, &stats.CompletedBookings)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price), 0) FROM bookings
		WHERE owner_id = $1 AND status = $2 AND created_at >= $3
	`, ownerID, string(StatusConfirmed), monthStart).Scan(&stats.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	recent, err := s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE owner_id = $1 ORDER BY created_at DESC LIMIT 3
	`, ownerID)
	if err != nil {
		return nil, err
	}
	stats.RecentBookings = recent

	return stats, nil
}

func (s *SQLStore) list(ctx context.Context, query string, args ...interface{}) ([]*Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, booking)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row scanner) (*Booking, error) {
	booking := &Booking{}
	var status string
	err := row.Scan(&booking.ID, &booking.CarID, &booking.RenterID,
		&booking.OwnerID, &booking.PickupDate, &booking.ReturnDate,
		&status, &booking.Price, &booking.CreatedAt)
	if err != nil {
		return nil, err
	}
	booking.Status = Status(status)
	return booking, nil
}
