package cars

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Store persists car listings
type Store interface {
	Create(ctx context.Context, car *Car) error
	GetByID(ctx context.Context, id string) (*Car, error)
	ListAvailable(ctx context.Context) ([]*Car, error)
	ListAvailableByLocation(ctx context.Context, location string) ([]*Car, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Car, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	Unlist(ctx context.Context, id string) error
}

const carColumns = `id, owner_id, brand, model, image, year, category,
	seating_capacity, fuel_type, transmission, price_per_day, location,
	description, is_available, created_at`

// SQLStore implements Store over database/sql
type SQLStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewSQLStore creates a SQL-backed car store. metrics may be nil.
func NewSQLStore(db *sql.DB, metrics *observability.Metrics) *SQLStore {
	return &SQLStore{db: db, metrics: metrics}
}

func (s *SQLStore) observe(operation string, start time.Time, err *error) {
	if s.metrics != nil {
		s.metrics.ObserveStorage(operation, start, *err)
	}
}

// EnsureSchema creates the cars table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cars (
			id               TEXT PRIMARY KEY,
			owner_id         TEXT NOT NULL,
			brand            TEXT NOT NULL,
			model            TEXT NOT NULL,
			image            TEXT NOT NULL,
			year             INTEGER NOT NULL,
			category         TEXT NOT NULL,
			seating_capacity INTEGER NOT NULL,
			fuel_type        TEXT NOT NULL,
			transmission     TEXT NOT NULL,
			price_per_day    DOUBLE PRECISION NOT NULL,
			location         TEXT NOT NULL,
			description      TEXT NOT NULL,
			is_available     BOOLEAN NOT NULL,
			created_at       TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cars table: %w", err)
	}
	return nil
}

// Create inserts a new car listing
func (s *SQLStore) Create(ctx context.Context, car *Car) (err error) {
	defer s.observe("cars_create", time.Now(), &err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cars (`+carColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, car.ID, car.OwnerID, car.Brand, car.Model, car.Image, car.Year, car.Category,
		car.SeatingCapacity, car.FuelType, car.Transmission, car.PricePerDay,
		car.Location, car.Description, car.IsAvailable, car.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert car: %w", err)
	}
	return nil
}

// GetByID resolves a car by id
func (s *SQLStore) GetByID(ctx context.Context, id string) (car *Car, err error) {
	defer s.observe("cars_get_by_id", time.Now(), &err)

	row := s.db.QueryRowContext(ctx, `
		SELECT `+carColumns+` FROM cars WHERE id = $1
	`, id)
	car, err = scanCar(row)
	if err == sql.ErrNoRows {
		return nil, auth.E(auth.KindNotFound, "car not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan car: %w", err)
	}
	return car, nil
}

// ListAvailable lists all cars currently marked available
func (s *SQLStore) ListAvailable(ctx context.Context) (cars []*Car, err error) {
	defer s.observe("cars_list_available", time.Now(), &err)

	return s.list(ctx, `
		SELECT `+carColumns+` FROM cars
		WHERE is_available ORDER BY created_at DESC
	`)
}

// ListAvailableByLocation lists available cars in a location
func (s *SQLStore) ListAvailableByLocation(ctx context.Context, location string) (cars []*Car, err error) {
	defer s.observe("cars_list_by_location", time.Now(), &err)

	return s.list(ctx, `
		SELECT `+carColumns+` FROM cars
		WHERE is_available AND location = $1 ORDER BY created_at DESC
	`, location)
}

// ListByOwner lists all cars belonging to an owner, available or not
func (s *SQLStore) ListByOwner(ctx context.Context, ownerID string) (cars []*Car, err error) {
	defer s.observe("cars_list_by_owner", time.Now(), &err)

	return s.list(ctx, `
		SELECT `+carColumns+` FROM cars
		WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
}

// CountByOwner counts an owner's listed cars
func (s *SQLStore) CountByOwner(ctx context.Context, ownerID string) (count int64, err error) {
	defer s.observe("cars_count_by_owner", time.Now(), &err)

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cars WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	return count, nil
}

// SetAvailability flips the availability flag
func (s *SQLStore) SetAvailability(ctx context.Context, id string, available bool) (err error) {
	defer s.observe("cars_set_availability", time.Now(), &err)

	_, err = s.db.ExecContext(ctx,
		`UPDATE cars SET is_available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	return nil
}

// Unlist soft-removes a car: the owner link is cleared and the car drops out
// of every listing, but the row (and its booking history) survives.
func (s *SQLStore) Unlist(ctx context.Context, id string) (err error) {
	defer s.observe("cars_unlist", time.Now(), &err)

	_, err = s.db.ExecContext(ctx,
		`UPDATE cars SET owner_id = '', is_available = $1 WHERE id = $2`, false, id)
	if err != nil {
		return fmt.Errorf("failed to unlist car: %w", err)
	}
	return nil
}

func (s *SQLStore) list(ctx context.Context, query string, args ...interface{}) ([]*Car, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	var out []*Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		out = append(out, car)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row scanner) (*Car, error) {
	car := &Car{}
	err := row.Scan(&car.ID, &car.OwnerID, &car.Brand, &car.Model, &car.Image,
		&car.Year, &car.Category, &car.SeatingCapacity, &car.FuelType,
		&car.Transmission, &car.PricePerDay, &car.Location, &car.Description,
		&car.IsAvailable, &car.CreatedAt)
	if err != nil {
		return nil, err
	}
	return car, nil
}
