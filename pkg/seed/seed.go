// Package seed loads a YAML car-catalog file and applies it to storage,
// giving a fresh install an owner account and a browsable catalog.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/users"
)

// File is the root of a seed document
type File struct {
	Owner OwnerSpec `yaml:"owner"`
	Cars  []CarSpec `yaml:"cars"`
}

// OwnerSpec is the owner account the seeded cars belong to
type OwnerSpec struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// CarSpec is one catalog entry
type CarSpec struct {
	Brand           string  `yaml:"brand"`
	Model           string  `yaml:"model"`
	Image           string  `yaml:"image"`
	Year            int     `yaml:"year"`
	Category        string  `yaml:"category"`
	SeatingCapacity int     `yaml:"seating_capacity"`
	FuelType        string  `yaml:"fuel_type"`
	Transmission    string  `yaml:"transmission"`
	PricePerDay     float64 `yaml:"price_per_day"`
	Location        string  `yaml:"location"`
	Description     string  `yaml:"description"`
}

// Load parses a seed file from disk
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if file.Owner.Email == "" || file.Owner.Password == "" {
		return nil, fmt.Errorf("seed file must declare an owner with email and password")
	}
	if len(file.Cars) == 0 {
		return nil, fmt.Errorf("seed file declares no cars")
	}
	for i, car := range file.Cars {
		if car.Brand == "" || car.Model == "" || car.Location == "" || car.PricePerDay <= 0 {
			return nil, fmt.Errorf("seed car %d is missing brand, model, location, or price", i)
		}
	}
	return file, nil
}

// Apply creates the seed owner (unless the account already exists) and
// inserts the catalog under it. A re-run against an owner who already has
// cars is a no-op, so seeding is idempotent.
func Apply(ctx context.Context, file *File, userService *users.Service, carStore cars.Store) error {
	owner, err := userService.Create(ctx, file.Owner.Name, file.Owner.Email, file.Owner.Password, auth.RoleOwner)
	if auth.KindOf(err) == auth.KindDuplicateEmail {
		owner, err = userService.Verify(ctx, file.Owner.Email, file.Owner.Password)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve seed owner: %w", err)
	}

	existing, err := carStore.CountByOwner(ctx, owner.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, spec := range file.Cars {
		car := &cars.Car{
			ID:              uuid.NewString(),
			OwnerID:         owner.ID,
			Brand:           spec.Brand,
			Model:           spec.Model,
			Image:           spec.Image,
			Year:            spec.Year,
			Category:        spec.Category,
			SeatingCapacity: spec.SeatingCapacity,
			FuelType:        spec.FuelType,
			Transmission:    spec.Transmission,
			PricePerDay:     spec.PricePerDay,
			Location:        spec.Location,
			Description:     spec.Description,
			IsAvailable:     true,
			CreatedAt:       now,
		}
		if err := carStore.Create(ctx, car); err != nil {
			return fmt.Errorf("failed to seed car %s %s: %w", spec.Brand, spec.Model, err)
		}
	}
	return nil
}
