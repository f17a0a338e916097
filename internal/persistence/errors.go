package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("persistence: already exists")
	// ErrConstraintViolation is returned when a record breaks a schema rule.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrCapacityReached is returned when an event has sold all its tickets.
	ErrCapacityReached = errors.New("persistence: capacity reached")
)

// ErrInvalidQuery is returned when a query names a field the collection does
// not expose.
var ErrInvalidQuery = errors.New("persistence: invalid query")
