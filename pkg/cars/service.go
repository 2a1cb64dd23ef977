package cars

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Service provides car catalog operations
type Service struct {
	store   Store
	images  ImageStore
	cache   *ListCache
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a car service. cache and metrics may be nil.
func NewService(store Store, images ImageStore, cache *ListCache, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{store: store, images: images, cache: cache, logger: logger, metrics: metrics}
}

// Add lists a new car for the owner, storing its image first
func (s *Service) Add(ctx context.Context, ownerID string, input Input, image []byte) (*Car, error) {
	if input.Brand == "" || input.Model == "" || input.PricePerDay <= 0 || input.Location == "" {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}
	if len(image) == 0 {
		return nil, auth.E(auth.KindValidation, "Fill all the fields")
	}

	id := uuid.NewString()
	imageURL, err := s.images.Put(ctx, "cars/"+id, image, http.DetectContentType(image))
	if err != nil {
		return nil, err
	}

	car := &Car{
		ID:              id,
		OwnerID:         ownerID,
		Brand:           input.Brand,
		Model:           input.Model,
		Image:           imageURL,
		Year:            input.Year,
		Category:        input.Category,
		SeatingCapacity: input.SeatingCapacity,
		FuelType:        input.FuelType,
		Transmission:    input.Transmission,
		PricePerDay:     input.PricePerDay,
		Location:        input.Location,
		Description:     input.Description,
		IsAvailable:     true,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.Create(ctx, car); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	if s.metrics != nil {
		s.metrics.CarsListedTotal.Inc()
	}
	s.logger.WithField("car_id", car.ID).WithField("owner_id", ownerID).Info("car listed")
	return car, nil
}

// ListAvailable returns the public catalog, served from cache when possible
func (s *Service) ListAvailable(ctx context.Context) ([]*Car, error) {
	if s.cache != nil {
		if cached := s.cache.Get(ctx); cached != nil {
			return cached, nil
		}
	}

	cars, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cars)
	}
	return cars, nil
}

// ListByOwner returns all of an owner's cars
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Car, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ToggleAvailability flips a car's availability. Only the listing owner may
// do this.
func (s *Service) ToggleAvailability(ctx context.Context, ownerID, carID string) (*Car, error) {
	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetAvailability(ctx, carID, !car.IsAvailable); err != nil {
		return nil, err
	}
	car.IsAvailable = !car.IsAvailable

	s.invalidate(ctx)
	return car, nil
}

// Remove unlists a car. Only the listing owner may do this. The record is
// soft-removed so existing bookings keep a valid reference.
func (s *Service) Remove(ctx context.Context, ownerID, carID string) error {
	if _, err := s.ownedCar(ctx, ownerID, carID); err != nil {
		return err
	}

	if err := s.store.Unlist(ctx, carID); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.WithField("car_id", carID).Info("car unlisted")
	return nil
}

func (s *Service) ownedCar(ctx context.Context, ownerID, carID string) (*Car, error) {
	car, err := s.store.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != ownerID {
		return nil, auth.E(auth.KindUnauthorized, "not authorized")
	}
	return car, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
