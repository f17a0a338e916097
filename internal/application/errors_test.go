package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/eventhub/internal/gateway"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"title": "required", "end": "too early"}}
	if got := withFields.Error(); got != "validation failed: end: too early; title: required" {
		t.Fatalf("unexpected message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestAuthErrorMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"already registered", fmt.Errorf("wrapped: %w", gateway.ErrAlreadyRegistered), "This email is already registered. Please sign in instead."},
		{"invalid credentials", gateway.ErrInvalidCredentials, "Invalid email or password."},
		{"validation", &ValidationError{FieldErrors: map[string]string{"email": "required"}}, "validation failed: email: required"},
		{"unsupported provider", gateway.ErrUnsupportedProvider, "This sign-in provider is not available."},
		{"provider message", errors.New("gateway: rate limit exceeded"), "gateway: rate limit exceeded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := AuthErrorMessage(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
