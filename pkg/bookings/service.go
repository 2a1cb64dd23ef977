package bookings

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Service provides booking operations
type Service struct {
	store   Store
	cars    cars.Store
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewService creates a booking service. metrics may be nil.
func NewService(store Store, carStore cars.Store, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		cars:    carStore,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// CheckAvailability returns cars in a location that are free over the window
func (s *Service) CheckAvailability(ctx context.Context, location string, pickup, ret time.Time) ([]*cars.Car, error) {
	if location == "" || !ret.After(pickup) {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}

	candidates, err := s.cars.ListAvailableByLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	free := make([]*cars.Car, 0, len(candidates))
	for _, car := range candidates {
		overlaps, err := s.store.OverlapCount(ctx, car.ID, pickup, ret)
		if err != nil {
			return nil, err
		}
		if overlaps == 0 {
			free = append(free, car)
		}
	}
	return free, nil
}

// Create places a pending booking for the renter. The car must exist, be
// available, and have no overlapping non-cancelled booking. Price is the
// car's daily rate times the number of (whole, rounded up) days.
func (s *Service) Create(ctx context.Context, renterID, carID string, pickup, ret time.Time) (*Booking, error) {
	if carID == "" || !ret.After(pickup) {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}

	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !car.IsAvailable {
		return nil, auth.E(auth.KindValidation, "car is not available")
	}

	overlaps, err := s.store.OverlapCount(ctx, carID, pickup, ret)
	if err != nil {
		return nil, err
	}
	if overlaps > 0 {
		return nil, auth.E(auth.KindValidation, "car is not available")
	}

	days := math.Ceil(ret.Sub(pickup).Hours() / 24)
	booking := &Booking{
		ID:         uuid.NewString(),
		CarID:      carID,
		RenterID:   renterID,
		OwnerID:    car.OwnerID,
		PickupDate: pickup,
		ReturnDate: ret,
		Status:     StatusPending,
		Price:      days * car.PricePerDay,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreatedTotal.Inc()
	}
	s.logger.WithField("booking_id", booking.ID).WithField("car_id", carID).Info("booking created")
	return booking, nil
}

// ListByRenter returns the renter's bookings
func (s *Service) ListByRenter(ctx context.Context, renterID string) ([]*Booking, error) {
	return s.store.ListByRenter(ctx, renterID)
}

// ListByOwner returns bookings on the owner's cars
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Booking, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ChangeStatus lets the owning user confirm or cancel a booking on one of
// their cars
func (s *Service) ChangeStatus(ctx context.Context, ownerID, bookingID string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}

	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, auth.E(auth.KindUnauthorized, "not authorized")
	}

	if err := s.store.UpdateStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status
	return booking, nil
}

// Dashboard aggregates the owner dashboard: car count, booking counts,
// recent bookings, and revenue from confirmed bookings this month
func (s *Service) Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats, err := s.store.OwnerStats(ctx, ownerID, monthStart)
	if err != nil {
		return nil, err
	}

	stats.TotalCars, err = s.cars.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SweepStale cancels pending bookings whose pickup date has passed
func (s *Service) SweepStale(ctx context.Context) (int64, error) {
	swept, err := s.store.CancelStalePending(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.WithField("count", swept).Info("stale pending bookings cancelled")
	}
	return swept, nil
}
