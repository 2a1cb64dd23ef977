package cars

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/httputil"
	"github.com/rentloop/rentloop/pkg/middleware"
)

// maxImageBytes caps listing image uploads
const maxImageBytes = 5 << 20

// Handlers provides the catalog HTTP surface
type Handlers struct {
	service *Service
}

// NewHandlers creates car handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers catalog routes. The public list stays open;
// owner routes run behind the gate with the owner capability required.
func (h *Handlers) RegisterRoutes(r *mux.Router, gate *middleware.AuthGate) {
	r.HandleFunc("/api/user/cars", h.listAvailable).Methods("GET")
	r.HandleFunc("/images/cars/{id}", h.serveImage).Methods("GET")

	r.Handle("/api/owner/add-car", gate.RequireOwner(http.HandlerFunc(h.addCar))).Methods("POST")
	r.Handle("/api/owner/cars", gate.RequireOwner(http.HandlerFunc(h.ownerCars))).Methods("GET")
	r.Handle("/api/owner/toggle-car", gate.RequireOwner(http.HandlerFunc(h.toggleCar))).Methods("POST")
	r.Handle("/api/owner/delete-car", gate.RequireOwner(http.HandlerFunc(h.deleteCar))).Methods("POST")
}

// listAvailable handles GET /api/user/cars
func (h *Handlers) listAvailable(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.ListAvailable(r.Context())
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if cars == nil {
		cars = []*Car{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"cars": cars})
}

// addCar handles POST /api/owner/add-car. The web client submits a
// multipart form with a carData JSON field and an image file.
func (h *Handlers) addCar(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserFrom(r)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httputil.WriteFailure(w, auth.E(auth.KindValidation, "Fill all the fields"))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(r.FormValue("carData")), &input); err != nil {
		httputil.WriteFailure(w, auth.E(auth.KindValidation, "Fill all the fields"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.WriteFailure(w, auth.E(auth.KindValidation, "Fill all the fields"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}

	car, err := h.service.Add(r.Context(), owner.ID, input, image)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteSuccess(w, httputil.Payload{"car": car})
}

// ownerCars handles GET /api/owner/cars
func (h *Handlers) ownerCars(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserFrom(r)

	cars, err := h.service.ListByOwner(r.Context(), owner.ID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if cars == nil {
		cars = []*Car{}
	}
	httputil.WriteSuccess(w, httputil.Payload{"cars": cars})
}

// toggleCar handles POST /api/owner/toggle-car
func (h *Handlers) toggleCar(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserFrom(r)

	var req struct {
		CarID string `json:"carId"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	car, err := h.service.ToggleAvailability(r.Context(), owner.ID, req.CarID)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteSuccess(w, httputil.Payload{"car": car})
}

// deleteCar handles POST /api/owner/delete-car
func (h *Handlers) deleteCar(w http.ResponseWriter, r *http.Request) {
	owner := middleware.UserFrom(r)

	var req struct {
		CarID string `json:"carId"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.service.Remove(r.Context(), owner.ID, req.CarID); err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteSuccess(w, httputil.Payload{"message": "car removed"})
}

// serveImage handles GET /images/cars/{id} for the filesystem image backend
func (h *Handlers) serveImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := h.service.images.Get(r.Context(), "cars/"+id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}
