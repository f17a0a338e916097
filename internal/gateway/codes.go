package gateway

import "errors"

// Wire error codes carried in HTTP error bodies.
const (
	CodeAlreadyRegistered   = "AUTH_ALREADY_REGISTERED"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeUnauthorized        = "AUTH_REQUIRED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeCapacityReached     = "CAPACITY_REACHED"
	CodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"
	CodeInvalidRequest      = "INVALID_REQUEST"
)

var codes = []struct {
	code string
	err  error
}{
	// More specific sentinels come first.
	{CodeAlreadyRegistered, ErrAlreadyRegistered},
	{CodeInvalidCredentials, ErrInvalidCredentials},
	{CodeCapacityReached, ErrCapacityReached},
	{CodeUnsupportedProvider, ErrUnsupportedProvider},
	{CodeUnauthorized, ErrUnauthorized},
	{CodeForbidden, ErrForbidden},
	{CodeNotFound, ErrNotFound},
	{CodeConflict, ErrConflict},
	{CodeInvalidRequest, ErrInvalidRequest},
}

// CodeOf returns the wire code of err, or "" when err carries no gateway
// sentinel.
func CodeOf(err error) string {
	for _, entry := range codes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return ""
}

// ErrorForCode returns the sentinel for a wire code, or nil for an unknown code.
func ErrorForCode(code string) error {
	for _, entry := range codes {
		if entry.code == code {
			return entry.err
		}
	}
	return nil
}
