package users

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/httputil"
	"github.com/rentloop/rentloop/pkg/middleware"
	"github.com/rentloop/rentloop/pkg/observability"
)

// Handlers provides the /api/user HTTP surface
type Handlers struct {
	service *Service
	issuer  *auth.Issuer
	metrics *observability.Metrics
}

// NewHandlers creates user handlers. metrics may be nil.
func NewHandlers(service *Service, issuer *auth.Issuer, metrics *observability.Metrics) *Handlers {
	return &Handlers{service: service, issuer: issuer, metrics: metrics}
}

// RegisterRoutes registers user routes; /api/user/data runs behind the gate
func (h *Handlers) RegisterRoutes(r *mux.Router, gate *middleware.AuthGate) {
	r.HandleFunc("/api/user/register", h.register).Methods("POST")
	r.HandleFunc("/api/user/login", h.login).Methods("POST")
	r.Handle("/api/user/data", gate.Handler(http.HandlerFunc(h.userData))).Methods("GET")
}

// register handles POST /api/user/register
func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string    `json:"name"`
		Email    string    `json:"email"`
		Password string    `json:"password"`
		Role     auth.Role `json:"role"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RegistrationsTotal.Inc()
	}
	httputil.WriteSuccess(w, httputil.Payload{"token": token})
}

// login handles POST /api/user/login
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.service.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countLogin("failure")
		httputil.WriteFailure(w, err)
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	h.countLogin("success")
	httputil.WriteSuccess(w, httputil.Payload{"token": token})
}

// userData handles GET /api/user/data; the gate has already resolved the
// identity and stripped secret material
func (h *Handlers) userData(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)
	httputil.WriteSuccess(w, httputil.Payload{"user": user})
}

func (h *Handlers) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
