package http

import (
	"context"

	"github.com/example/eventhub/internal/gateway"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the authenticated user.
func ContextWithPrincipal(ctx context.Context, user gateway.User) context.Context {
	return context.WithValue(ctx, principalContextKey, user)
}

// PrincipalFromContext extracts the authenticated user from context if available.
func PrincipalFromContext(ctx context.Context) (gateway.User, bool) {
	user, ok := ctx.Value(principalContextKey).(gateway.User)
	return user, ok
}
