package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rentloop/rentloop/pkg/bookings"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/client"
)

const dateLayout = "2006-01-02"

func newCarsCommand() *Command {
	return &Command{
		Name:        "cars",
		Description: "List cars available to rent",
		Run:         runCars,
	}
}

func runCars(args []string) error {
	listing, err := newAPIClient().Cars(context.Background())
	if err != nil {
		return err
	}
	printCars(listing)
	return nil
}

func newAvailabilityCommand() *Command {
	return &Command{
		Name:        "availability",
		Description: "Find free cars in a location over a date window",
		Run:         runAvailability,
	}
}

func runAvailability(args []string) error {
	flags := flag.NewFlagSet("availability", flag.ExitOnError)
	location := flags.String("location", "", "City to search in")
	pickup := flags.String("pickup", "", "Pickup date (YYYY-MM-DD)")
	ret := flags.String("return", "", "Return date (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	pickupDate, returnDate, err := parseDates(*pickup, *ret)
	if err != nil {
		return err
	}

	free, err := newAPIClient().CheckAvailability(context.Background(), *location, pickupDate, returnDate)
	if err != nil {
		return err
	}
	printCars(free)
	return nil
}

func newBookCommand() *Command {
	return &Command{
		Name:        "book",
		Description: "Book a car over a date window",
		Run:         runBook,
	}
}

func runBook(args []string) error {
	flags := flag.NewFlagSet("book", flag.ExitOnError)
	carID := flags.String("car", "", "Car id to book")
	pickup := flags.String("pickup", "", "Pickup date (YYYY-MM-DD)")
	ret := flags.String("return", "", "Return date (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	pickupDate, returnDate, err := parseDates(*pickup, *ret)
	if err != nil {
		return err
	}

	c, err := restoredClient()
	if err != nil {
		return err
	}

	booking, err := c.CreateBooking(context.Background(), *carID, pickupDate, returnDate)
	if err != nil {
		return err
	}
	fmt.Printf("Booked %s from %s to %s for %.2f (status: %s)\n",
		booking.CarID, booking.PickupDate.Format(dateLayout),
		booking.ReturnDate.Format(dateLayout), booking.Price, booking.Status)
	return nil
}

func newBookingsCommand() *Command {
	return &Command{
		Name:        "bookings",
		Description: "List your bookings",
		Run:         runBookings,
	}
}

func runBookings(args []string) error {
	c, err := restoredClient()
	if err != nil {
		return err
	}

	mine, err := c.MyBookings(context.Background())
	if err != nil {
		return err
	}
	printBookings(mine)
	return nil
}

func newOwnerCommand() *Command {
	return &Command{
		Name:        "owner",
		Description: "Owner operations: cars, bookings, dashboard, confirm, cancel",
		Run:         runOwner,
	}
}

func runOwner(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rent-cli owner <cars|bookings|dashboard|confirm|cancel> [args]")
	}

	c, err := restoredClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "cars":
		listing, err := c.OwnerCars(ctx)
		if err != nil {
			return err
		}
		printCars(listing)
		return nil
	case "bookings":
		booked, err := c.OwnerBookings(ctx)
		if err != nil {
			return err
		}
		printBookings(booked)
		return nil
	case "dashboard":
		stats, err := c.OwnerDashboard(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cars: %d\nBookings: %d (pending %d, completed %d)\nMonthly revenue: %.2f\n",
			stats.TotalCars, stats.TotalBookings, stats.PendingBookings,
			stats.CompletedBookings, stats.MonthlyRevenue)
		printBookings(stats.RecentBookings)
		return nil
	case "confirm", "cancel":
		if len(args) < 2 {
			return fmt.Errorf("usage: rent-cli owner %s <booking-id>", args[0])
		}
		status := bookings.StatusConfirmed
		if args[0] == "cancel" {
			status = bookings.StatusCancelled
		}
		booking, err := c.ChangeBookingStatus(ctx, args[1], status)
		if err != nil {
			return err
		}
		fmt.Printf("Booking %s is now %s\n", booking.ID, booking.Status)
		return nil
	default:
		return fmt.Errorf("unknown command: owner %s", args[0])
	}
}

// restoredClient builds a client and loads the stored session, so gated
// calls carry the token.
func restoredClient() (*client.Client, error) {
	c := newAPIClient()
	if err := c.Restore(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func parseDates(pickup, ret string) (time.Time, time.Time, error) {
	pickupDate, err := time.Parse(dateLayout, pickup)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pickup date %q (want YYYY-MM-DD)", pickup)
	}
	returnDate, err := time.Parse(dateLayout, ret)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid return date %q (want YYYY-MM-DD)", ret)
	}
	return pickupDate, returnDate, nil
}

func printCars(listing []*cars.Car) {
	if len(listing) == 0 {
		fmt.Println("No cars found")
		return
	}
	for _, car := range listing {
		fmt.Printf("%s  %s %s (%d)  %s  %.2f/day  %s\n",
			car.ID, car.Brand, car.Model, car.Year, car.Location, car.PricePerDay, availabilityLabel(car))
	}
}

func availabilityLabel(car *cars.Car) string {
	if car.IsAvailable {
		return "available"
	}
	return "unavailable"
}

func printBookings(booked []*bookings.Booking) {
	if len(booked) == 0 {
		fmt.Println("No bookings found")
		return
	}
	for _, b := range booked {
		fmt.Printf("%s  car=%s  %s -> %s  %.2f  %s\n",
			b.ID, b.CarID, b.PickupDate.Format(dateLayout),
			b.ReturnDate.Format(dateLayout), b.Price, b.Status)
	}
}
