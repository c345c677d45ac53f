package shared

import (
	"encoding/json"
	"net/http"
)

// apiError is the envelope every handler emits on failure.
type apiError struct {
	Error string `json:"error"`
}

// WriteError writes the standard JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, code int, err error) {
	WriteJSON(w, code, apiError{Error: err.Error()})
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
