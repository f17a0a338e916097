package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/store"
)

// Providers lists the third-party sign-in providers offered to users.
var Providers = []string{"github", "facebook"}

// SessionService signs users in and out and mirrors the result into the store.
type SessionService struct {
	auth       gateway.Auth
	store      *store.Store
	redirectTo string
	logger     *slog.Logger
}

// NewSessionService constructs a SessionService. redirectTo is where
// third-party providers send the user back to.
func NewSessionService(auth gateway.Auth, st *store.Store, redirectTo string) *SessionService {
	return NewSessionServiceWithLogger(auth, st, redirectTo, nil)
}

// NewSessionServiceWithLogger constructs a SessionService with a specified logger.
func NewSessionServiceWithLogger(auth gateway.Auth, st *store.Store, redirectTo string, logger *slog.Logger) *SessionService {
	return &SessionService{auth: auth, store: st, redirectTo: redirectTo, logger: defaultLogger(logger)}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// SignUp registers a new account. The store is only touched on success.
func (s *SessionService) SignUp(ctx context.Context, email, password string) (user store.User, err error) {
	if s == nil || s.auth == nil {
		err = fmt.Errorf("SessionService is not configured")
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "SignUp", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "sign-up failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "sign-up succeeded")
	}()

	if vErr := validateCredentials(email, password); vErr.HasErrors() {
		err = vErr
		return
	}

	var session gateway.Session
	session, err = s.auth.SignUp(ctx, gateway.Credentials{Email: email, Password: password})
	if err != nil {
		return
	}
	user = userFromSession(session)
	s.store.SetUser(&user)
	return
}

// SignIn authenticates an existing account. Every gateway failure is
// reported as invalid credentials.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (user store.User, err error) {
	if s == nil || s.auth == nil {
		err = fmt.Errorf("SessionService is not configured")
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "SignIn", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "sign-in failed", "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "sign-in succeeded")
	}()

	session, signInErr := s.auth.SignIn(ctx, gateway.Credentials{Email: email, Password: password})
	if signInErr != nil {
		logger.DebugContext(ctx, "gateway rejected sign-in", "error", signInErr)
		err = gateway.ErrInvalidCredentials
		return
	}
	user = userFromSession(session)
	s.store.SetUser(&user)
	return
}

// SignInWithProvider returns the URL that starts a third-party sign-in.
func (s *SessionService) SignInWithProvider(ctx context.Context, provider string) (string, error) {
	if s == nil || s.auth == nil {
		return "", fmt.Errorf("SessionService is not configured")
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	supported := false
	for _, candidate := range Providers {
		if candidate == provider {
			supported = true
		}
	}
	if !supported {
		return "", fmt.Errorf("%w: %q", gateway.ErrUnsupportedProvider, provider)
	}

	target, err := s.auth.SignInWithProvider(ctx, provider, s.redirectTo)
	if err != nil {
		s.loggerWith(ctx, "SignInWithProvider", "provider", provider).WarnContext(ctx, "provider sign-in failed", "error", err, "error_kind", ErrorKind(err))
		return "", err
	}
	return target, nil
}

// SignOut clears the store user even when the gateway call fails.
func (s *SessionService) SignOut(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}
	var err error
	if s.auth != nil {
		err = s.auth.SignOut(ctx)
	}
	s.store.SetUser(nil)
	if err != nil {
		s.loggerWith(ctx, "SignOut").WarnContext(ctx, "gateway sign-out failed", "error", err)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) *ValidationError {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must be a valid address")
	}
	if len(password) < 6 {
		vErr.add("password", "password must be at least 6 characters")
	}
	return vErr
}

func userFromSession(session gateway.Session) store.User {
	name, _, _ := strings.Cut(session.User.Email, "@")
	return store.User{
		ID:    session.User.ID,
		Email: session.User.Email,
		Name:  name,
		Role:  store.RoleAttendee,
	}
}

// SessionSource reports the signed-in user's id, empty when signed out.
type SessionSource func() string

func (f SessionSource) userID() string {
	if f == nil {
		return ""
	}
	return f()
}

// StoreSession reads the signed-in user's id from st.
func StoreSession(st *store.Store) SessionSource {
	return func() string {
		if st == nil {
			return ""
		}
		if user := st.Snapshot().User; user != nil {
			return user.ID
		}
		return ""
	}
}
