package authsdk

import "fmt"

// APIError is a typed error parsed from the service's JSON error body.
type APIError struct {
	// StatusCode is the HTTP status the service responded with.
	StatusCode int

	// Code is the machine-readable error code, e.g. "invalid_token".
	Code string

	// Message is the human-readable description.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}
