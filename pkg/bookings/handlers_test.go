package bookings

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/middleware"
	"github.com/rentloop/rentloop/pkg/observability"
	"github.com/rentloop/rentloop/pkg/users"
)

type apiFixture struct {
	router      *mux.Router
	ownerToken  string
	renterToken string
	carID       string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	carStore := cars.NewSQLStore(db, nil)
	require.NoError(t, carStore.EnsureSchema(ctx))
	bookingStore := NewSQLStore(db, nil)
	require.NoError(t, bookingStore.EnsureSchema(ctx))

	logger := observability.NewLogger(observability.ErrorLevel, nil)
	userService := users.NewService(users.NewMemoryStore(), logger)
	issuer := auth.NewIssuer([]byte("booking-handler-test-key"))
	gate := middleware.NewAuthGate(issuer, userService, nil)

	owner, err := userService.Create(ctx, "Olive", "olive@x.com", "password1", auth.RoleOwner)
	require.NoError(t, err)
	renter, err := userService.Create(ctx, "Rei", "rei@x.com", "password1", auth.RoleRenter)
	require.NoError(t, err)

	ownerToken, err := issuer.Issue(owner.ID)
	require.NoError(t, err)
	renterToken, err := issuer.Issue(renter.ID)
	require.NoError(t, err)

	car := &cars.Car{
		ID: "c1", OwnerID: owner.ID, Brand: "BMW", Model: "X5",
		Image: "http://localhost/images/cars/c1", Year: 2021, Category: "SUV",
		SeatingCapacity: 5, FuelType: "Petrol", Transmission: "Automatic",
		PricePerDay: 100, Location: "Berlin", Description: "spacious",
		IsAvailable: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, carStore.Create(ctx, car))

	service := NewService(bookingStore, carStore, logger, nil)
	router := mux.NewRouter()
	NewHandlers(service).RegisterRoutes(router, gate)

	return &apiFixture{
		router:      router,
		ownerToken:  ownerToken,
		renterToken: renterToken,
		carID:       car.ID,
	}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body interface{}) map[string]interface{} {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if token != "" {
		r.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCheckAvailability_Public(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "POST", "/api/bookings/check-availability", "", map[string]string{
		"location": "Berlin", "pickupDate": "2026-09-10", "returnDate": "2026-09-12",
	})
	require.Equal(t, true, out["success"])
	free := out["availableCars"].([]interface{})
	assert.Len(t, free, 1)
}

func TestCreateBooking_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "POST", "/api/bookings/create", "", map[string]string{
		"carId": f.carID, "pickupDate": "2026-09-10", "returnDate": "2026-09-12",
	})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "login or signup to book or list a car", out["message"])
}

func TestCreateBooking_EndToEnd(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "POST", "/api/bookings/create", f.renterToken, map[string]string{
		"carId": f.carID, "pickupDate": "2026-09-10", "returnDate": "2026-09-12",
	})
	require.Equal(t, true, out["success"])
	booking := out["booking"].(map[string]interface{})
	assert.Equal(t, "pending", booking["status"])
	assert.Equal(t, 200.0, booking["price"])

	// The renter sees it
	out = f.call(t, "GET", "/api/bookings/user", f.renterToken, nil)
	require.Equal(t, true, out["success"])
	assert.Len(t, out["bookings"].([]interface{}), 1)

	// The car's owner sees it too
	out = f.call(t, "GET", "/api/bookings/owner", f.ownerToken, nil)
	require.Equal(t, true, out["success"])
	assert.Len(t, out["bookings"].([]interface{}), 1)

	// Owner confirms
	bookingID := booking["id"].(string)
	out = f.call(t, "POST", "/api/bookings/change-status", f.ownerToken, map[string]string{
		"bookingId": bookingID, "status": "confirmed",
	})
	require.Equal(t, true, out["success"])
	assert.Equal(t, "confirmed", out["booking"].(map[string]interface{})["status"])
}

func TestOwnerRoutes_RejectRenter(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "GET", "/api/bookings/owner", f.renterToken, nil)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "not authorized", out["message"])

	out = f.call(t, "GET", "/api/owner/dashboard", f.renterToken, nil)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "not authorized", out["message"])
}

func TestDashboard(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "POST", "/api/bookings/create", f.renterToken, map[string]string{
		"carId": f.carID, "pickupDate": "2026-09-10", "returnDate": "2026-09-12",
	})
	require.Equal(t, true, out["success"])

	out = f.call(t, "GET", "/api/owner/dashboard", f.ownerToken, nil)
	require.Equal(t, true, out["success"])
	dashboard := out["dashboardData"].(map[string]interface{})
	assert.Equal(t, 1.0, dashboard["total_cars"])
	assert.Equal(t, 1.0, dashboard["total_bookings"])
	assert.Equal(t, 1.0, dashboard["pending_bookings"])
	assert.Len(t, dashboard["recent_bookings"].([]interface{}), 1)
}

func TestCheckAvailability_BadDates(t *testing.T) {
	f := newAPIFixture(t)

	out := f.call(t, "POST", "/api/bookings/check-availability", "", map[string]string{
		"location": "Berlin", "pickupDate": "soon", "returnDate": "later",
	})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Fill all the fields", out["message"])
}
