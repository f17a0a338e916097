package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, gateway.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, gateway.ErrNotFound):
		return "not_found"
	case errors.Is(err, gateway.ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, gateway.ErrForbidden):
		return "forbidden"
	case errors.Is(err, gateway.ErrCapacityReached):
		return "capacity_reached"
	case errors.Is(err, gateway.ErrConflict):
		return "conflict"
	case errors.Is(err, gateway.ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, gateway.ErrInvalidRequest):
		return "invalid_request"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
