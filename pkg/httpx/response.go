package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the service's single error shape: a machine-readable
// code plus a human message, with the status on the wire. Every rejection,
// from bad credentials to expired tokens, goes out through here so clients
// only ever have to parse one thing.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	NoCache(w)
	WriteJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
