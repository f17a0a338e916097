package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/eventhub/internal/gateway"
)

var (
	// ErrUnauthorized is returned when an operation needs a signed-in user and
	// the store has none.
	ErrUnauthorized = errors.New("application: no user is signed in")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface. Field messages are listed in field
// order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + v.FieldErrors[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// AuthErrorMessage returns the text shown to the user for a failed sign-up
// or sign-in. Failures without a dedicated message keep the provider's text.
func AuthErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gateway.ErrAlreadyRegistered):
		return "This email is already registered. Please sign in instead."
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, gateway.ErrUnsupportedProvider):
		return "This sign-in provider is not available."
	default:
		return err.Error()
	}
}
