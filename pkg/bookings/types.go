package bookings

import "time"

// Status is the lifecycle state of a booking
type Status string

const (
	// StatusPending awaits the owner's decision
	StatusPending Status = "pending"
	// StatusConfirmed was accepted by the owner
	StatusConfirmed Status = "confirmed"
	// StatusCancelled was declined by the owner or expired unclaimed
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// Booking links a renter to a car over a date window. Price is fixed at
// creation from the car's daily rate.
type Booking struct {
	ID         string    `json:"id" db:"id"`
	CarID      string    `json:"car_id" db:"car_id"`
	RenterID   string    `json:"renter_id" db:"renter_id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	PickupDate time.Time `json:"pickup_date" db:"pickup_date"`
	ReturnDate time.Time `json:"return_date" db:"return_date"`
	Status     Status    `json:"status" db:"status"`
	Price      float64   `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DashboardStats is the owner dashboard aggregation
type DashboardStats struct {
	TotalCars         int64      `json:"total_cars"`
	TotalBookings     int64      `json:"total_bookings"`
	PendingBookings   int64      `json:"pending_bookings"`
	CompletedBookings int64      `json:"completed_bookings"`
	RecentBookings    []*Booking `json:"recent_bookings"`
	MonthlyRevenue    float64    `json:"monthly_revenue"`
}
