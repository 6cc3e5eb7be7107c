package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody mirrors the API error document.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// writeError writes a JSON error in the same shape the handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: message, Code: code})
}
