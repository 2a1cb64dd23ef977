package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/bookings"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/observability"
	"github.com/rentloop/rentloop/pkg/session"
)

const dateLayout = "2006-01-02"

// Client is a typed client for the marketplace API. It owns the session:
// login and register install the issued token, and every subsequent request
// carries the session's current token in the Authorization header.
type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	notifier Notifier
}

// New creates a client whose session persists its token in store. The
// client itself serves as the session's identity fetcher. A nil notifier
// falls back to a LogNotifier writing warnings to stderr.
func New(baseURL string, store session.TokenStore, notifier Notifier) *Client {
	if notifier == nil {
		notifier = NewLogNotifier(observability.NewLogger(observability.WarnLevel, os.Stderr))
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		notifier: notifier,
	}
	c.session = session.New(store, c)
	return c
}

// Session exposes the client's session state
func (c *Client) Session() *session.Session {
	return c.session
}

// envelope is the uniform response body; everything beyond success and
// message is endpoint-specific and left zero elsewhere.
type envelope struct {
	Success       bool                     `json:"success"`
	Message       string                   `json:"message"`
	Token         string                   `json:"token"`
	User          *auth.User               `json:"user"`
	Cars          []*cars.Car              `json:"cars"`
	AvailableCars []*cars.Car              `json:"availableCars"`
	Booking       *bookings.Booking        `json:"booking"`
	Bookings      []*bookings.Booking      `json:"bookings"`
	Dashboard     *bookings.DashboardStats `json:"dashboardData"`
}

// Register creates an account and installs the issued token in the session
func (c *Client) Register(ctx context.Context, name, email, password string, role auth.Role) error {
	env, err := c.do(ctx, http.MethodPost, "/api/user/register", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	}, "")
	if err != nil {
		return err
	}
	return c.session.SetToken(ctx, env.Token)
}

// Login authenticates and installs the issued token in the session
func (c *Client) Login(ctx context.Context, email, password string) error {
	env, err := c.do(ctx, http.MethodPost, "/api/user/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return err
	}
	return c.session.SetToken(ctx, env.Token)
}

// Logout drops the session locally. The server keeps no session state, so
// there is nothing to call.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// Restore reloads a persisted token and refreshes the identity behind it
func (c *Client) Restore(ctx context.Context) error {
	return c.session.Restore(ctx)
}

// FetchIdentity resolves the identity behind token. It implements
// session.IdentityFetcher: the token is passed explicitly because a refresh
// must use the token that started it, not whatever is current by the time
// the request fires.
func (c *Client) FetchIdentity(ctx context.Context, token string) (*auth.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/user/data", nil, token)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

// Cars lists all cars currently available to rent
func (c *Client) Cars(ctx context.Context) ([]*cars.Car, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/user/cars", nil, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Cars, nil
}

// OwnerCars lists the authenticated owner's cars
func (c *Client) OwnerCars(ctx context.Context) ([]*cars.Car, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/owner/cars", nil, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Cars, nil
}

// CheckAvailability lists cars in a location free over the window
func (c *Client) CheckAvailability(ctx context.Context, location string, pickup, ret time.Time) ([]*cars.Car, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/bookings/check-availability", map[string]interface{}{
		"location":   location,
		"pickupDate": pickup.Format(dateLayout),
		"returnDate": ret.Format(dateLayout),
	}, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.AvailableCars, nil
}

// CreateBooking places a booking for the authenticated renter
func (c *Client) CreateBooking(ctx context.Context, carID string, pickup, ret time.Time) (*bookings.Booking, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/bookings/create", map[string]interface{}{
		"carId":      carID,
		"pickupDate": pickup.Format(dateLayout),
		"returnDate": ret.Format(dateLayout),
	}, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Booking, nil
}

// MyBookings lists the authenticated renter's bookings
func (c *Client) MyBookings(ctx context.Context) ([]*bookings.Booking, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/bookings/user", nil, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Bookings, nil
}

// OwnerBookings lists bookings on the authenticated owner's cars
func (c *Client) OwnerBookings(ctx context.Context) ([]*bookings.Booking, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/bookings/owner", nil, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Bookings, nil
}

// ChangeBookingStatus confirms or cancels a booking on one of the
// authenticated owner's cars
func (c *Client) ChangeBookingStatus(ctx context.Context, bookingID string, status bookings.Status) (*bookings.Booking, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/bookings/change-status", map[string]interface{}{
		"bookingId": bookingID,
		"status":    status,
	}, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Booking, nil
}

// OwnerDashboard fetches the authenticated owner's dashboard aggregation
func (c *Client) OwnerDashboard(ctx context.Context) (*bookings.DashboardStats, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/owner/dashboard", nil, c.session.Token())
	if err != nil {
		return nil, err
	}
	return env.Dashboard, nil
}

// do performs one API call. Logical failures ride HTTP 200 with
// success=false, so the envelope, not the status code, decides the outcome.
// Every failure is surfaced to the notifier exactly once here; callers just
// propagate the error.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, token string) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		// Raw token, no scheme prefix
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(fmt.Sprintf("request failed: %v", err), auth.KindInternal)
	}
	defer resp.Body.Close()

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, c.fail("malformed server response", auth.KindInternal)
	}
	if !env.Success {
		return nil, c.fail(env.Message, classify(env.Message))
	}
	return env, nil
}

func (c *Client) fail(message string, kind auth.Kind) error {
	if c.notifier != nil {
		c.notifier.Notify(message)
	}
	return auth.E(kind, message)
}

// classify maps the server's failure messages back onto the error taxonomy
func classify(message string) auth.Kind {
	switch message {
	case "Fill all the fields", "invalid request body", "car is not available":
		return auth.KindValidation
	case "User already exists":
		return auth.KindDuplicateEmail
	case "User not found", "car not found", "booking not found":
		return auth.KindNotFound
	case "Invalid Credentials":
		return auth.KindInvalidCredentials
	case "login or signup to book or list a car":
		return auth.KindUnauthenticated
	case "not authorized":
		return auth.KindUnauthorized
	default:
		return auth.KindInternal
	}
}
