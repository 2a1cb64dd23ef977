package bookings

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/httputil"
	"github.com/rentloop/rentloop/pkg/middleware"
)

// dateLayout is the wire format for booking dates
const dateLayout = "2006-01-02"

// Handlers provides the booking HTTP surface
type Handlers struct {
	service *Service
}

// NewHandlers creates booking handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers booking routes. The availability check is
// public; everything else runs behind the gate.
func (h *Handlers) RegisterRoutes(r *mux.Router, gate *middleware.AuthGate) {
	r.HandleFunc("/api/bookings/check-availability", h.checkAvailability).Methods("POST")

	r.Handle("/api/bookings/create", gate.Handler(http.HandlerFunc(h.create))).Methods("POST")
	r.Handle("/api/bookings/user", gate.Handler(http.HandlerFunc(h.userBookings))).Methods("GET")
	r.Handle("/api/bookings/owner", gate.RequireOwner(http.HandlerFunc(h.ownerBookings))).Methods("GET")
	r.Handle("/api/bookings/change-status", gate.RequireOwner(http.HandlerFunc(h.changeStatus))).Methods("POST")
	r.Handle("/api/owner/dashboard", gate.RequireOwner(http.HandlerFunc(h.dashboard))).Methods("GET")
}

// checkAvailability handles POST /api/bookings/check-availability
func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location   string `json:"location"`
		PickupDate string `json:"pickupDate"`
		ReturnDate string `json:"returnDate"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	pickup, ret, err := parseWindow(req.PickupDate, req.ReturnDate)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), req.Location, pickup, ret)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if available == nil {
		available = []*cars.Car{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"availableCars": available})
}

// create handles POST /api/bookings/create
func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)

	var req struct {
		CarID      string `json:"carId"`
		PickupDate string `json:"pickupDate"`
		ReturnDate string `json:"returnDate"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	pickup, ret, err := parseWindow(req.PickupDate, req.ReturnDate)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	booking, err := h.service.Create(r.Context(), user.ID, req.CarID, pickup, ret)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteSuccess(w, httputil.Payload{"booking": booking})
}

// userBookings handles GET /api/bookings/user
func (h *Handlers) userBookings(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)

	bookings, err := h.service.ListByRenter(r.Context(), user.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if bookings == nil {
		bookings = []*Booking{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"bookings": bookings})
}

// ownerBookings handles GET /api/bookings/owner
func (h *Handlers) ownerBookings(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)

	bookings, err := h.service.ListByOwner(r.Context(), user.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if bookings == nil {
		bookings = []*Booking{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"bookings": bookings})
}

// changeStatus handles POST /api/bookings/change-status
func (h *Handlers) changeStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)

	var req struct {
		BookingID string `json:"bookingId"`
		Status    Status `json:"status"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), user.ID, req.BookingID, req.Status)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteSuccess(w, httputil.Payload{"booking": booking})
}

// dashboard handles GET /api/owner/dashboard
func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)

	stats, err := h.service.Dashboard(r.Context(), user.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if stats.RecentBookings == nil {
		stats.RecentBookings = []*Booking{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"dashboardData": stats})
}

func parseWindow(pickup, ret string) (time.Time, time.Time, error) {
	p, err := time.Parse(dateLayout, pickup)
	if err != nil {
		return time.Time{}, time.Time{}, auth.E(auth.KindValidation, "Fill all the fields")
	}
	r, err := time.Parse(dateLayout, ret)
	if err != nil {
		return time.Time{}, time.Time{}, auth.E(auth.KindValidation, "Fill all the fields")
	}
	return p, r, nil
}
