package local

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/eventhub/internal/gateway"
)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (g *Gateway) issueSession(user gateway.User) (gateway.Session, error) {
	now := g.now()
	expires := now.Add(g.sessionTTL)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        g.newID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return gateway.Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return gateway.Session{AccessToken: signed, ExpiresAt: expires.UTC(), User: user}, nil
}

// Authenticate validates an access token and returns the user it was issued
// to. Any defect in the token yields gateway.ErrUnauthorized.
func (g *Gateway) Authenticate(token string) (gateway.User, error) {
	if token == "" {
		return gateway.User{}, gateway.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil {
		return gateway.User{}, fmt.Errorf("%w: %w", gateway.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return gateway.User{}, gateway.ErrUnauthorized
	}
	return gateway.User{ID: claims.Subject, Email: claims.Email}, nil
}

func defaultTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}
