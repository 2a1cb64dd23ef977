package cars

import "time"

// Car represents a listing in the rental catalog
type Car struct {
	ID              string    `json:"id" db:"id"`
	OwnerID         string    `json:"owner_id,omitempty" db:"owner_id"`
	Brand           string    `json:"brand" db:"brand"`
	Model           string    `json:"model" db:"model"`
	Image           string    `json:"image" db:"image"`
	Year            int       `json:"year" db:"year"`
	Category        string    `json:"category" db:"category"`
	SeatingCapacity int       `json:"seating_capacity" db:"seating_capacity"`
	FuelType        string    `json:"fuel_type" db:"fuel_type"`
	Transmission    string    `json:"transmission" db:"transmission"`
	PricePerDay     float64   `json:"price_per_day" db:"price_per_day"`
	Location        string    `json:"location" db:"location"`
	Description     string    `json:"description" db:"description"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Input is the owner-supplied listing data for a new car
type Input struct {
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	Year            int     `json:"year"`
	Category        string  `json:"category"`
	SeatingCapacity int     `json:"seating_capacity"`
	FuelType        string  `json:"fuel_type"`
	Transmission    string  `json:"transmission"`
	PricePerDay     float64 `json:"price_per_day"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
}
