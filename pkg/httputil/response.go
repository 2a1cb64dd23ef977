package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rentloop/rentloop/pkg/auth"
)

// Payload carries the variable fields of a success envelope
type Payload map[string]interface{}

// WriteSuccess writes {"success":true} merged with the payload fields
func WriteSuccess(w http.ResponseWriter, payload Payload) {
	body := Payload{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, body)
}

// WriteFailure converts err to the uniform failure envelope. The message is
// the kind-tagged message when err carries one, and a generic message for
// unclassified errors so internals never leak to clients.
func WriteFailure(w http.ResponseWriter, err error) {
	message := "something went wrong"
	if auth.KindOf(err) != auth.KindInternal {
		message = err.Error()
	}
	WriteFailureMessage(w, message)
}

// WriteFailureMessage writes {"success":false, "message": message}
func WriteFailureMessage(w http.ResponseWriter, message string) {
	writeJSON(w, Payload{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, body Payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// ParseJSONOrError decodes the request body into dst. On malformed input it
// writes a validation failure envelope and returns false.
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteFailure(w, auth.E(auth.KindValidation, "invalid request body"))
		return false
	}
	return true
}
