// Package local serves the gateway contract from the persistence
// repositories inside the gateway process. Chat inserts are published on a
// realtime broker so that live subscriptions observe them.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/logging"
	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/realtime"
)

// Storage is the set of repositories the gateway reads and writes.
type Storage interface {
	persistence.AccountRepository
	persistence.ProfileRepository
	persistence.EventRepository
	persistence.TicketRepository
	persistence.RatingRepository
	persistence.FriendshipRepository
	persistence.ChatRepository
	persistence.BreakoutRoomRepository
	persistence.SettingsRepository
}

// Options configures a Gateway.
type Options struct {
	// Secret signs access tokens. Required.
	Secret     []byte
	SessionTTL time.Duration
	// OAuthClientIDs enables third-party sign-in per provider name.
	OAuthClientIDs map[string]string
	PasswordParams *Argon2idParams
	Now            func() time.Time
	NewID          func() string
	Logger         *slog.Logger
}

// Gateway implements gateway.Gateway over Storage.
type Gateway struct {
	storage        Storage
	broker         realtime.Broker
	secret         []byte
	sessionTTL     time.Duration
	oauthClientIDs map[string]string
	passwordParams Argon2idParams
	now            func() time.Time
	newID          func() string
	logger         *slog.Logger
}

var _ gateway.Gateway = (*Gateway)(nil)

// New constructs a Gateway. A nil broker falls back to an in-process one.
func New(storage Storage, broker realtime.Broker, opts Options) (*Gateway, error) {
	if storage == nil {
		return nil, errors.New("local: storage is required")
	}
	if len(opts.Secret) == 0 {
		return nil, errors.New("local: token secret is required")
	}
	if broker == nil {
		broker = realtime.NewMemoryBroker()
	}
	g := &Gateway{
		storage:        storage,
		broker:         broker,
		secret:         opts.Secret,
		sessionTTL:     defaultTTL(opts.SessionTTL),
		oauthClientIDs: opts.OAuthClientIDs,
		passwordParams: DefaultArgon2idParams,
		now:            opts.Now,
		newID:          opts.NewID,
		logger:         opts.Logger,
	}
	if opts.PasswordParams != nil {
		g.passwordParams = *opts.PasswordParams
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g, nil
}

func (g *Gateway) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, g.logger, "gateway", "local", operation, attrs...)
}

// mapError translates persistence sentinels into gateway sentinels, keeping
// the original error in the chain.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %w", gateway.ErrNotFound, err)
	case errors.Is(err, persistence.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", gateway.ErrConflict, err)
	case errors.Is(err, persistence.ErrCapacityReached):
		return fmt.Errorf("%w: %w", gateway.ErrCapacityReached, err)
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrInvalidQuery):
		return fmt.Errorf("%w: %w", gateway.ErrInvalidRequest, err)
	default:
		return err
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gateway.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// SignUp creates an account and its profile and returns a fresh session.
func (g *Gateway) SignUp(ctx context.Context, credentials gateway.Credentials) (session gateway.Session, err error) {
	email := normalizeEmail(credentials.Email)
	logger := g.log(ctx, "SignUp", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "sign-up rejected", "error", err)
			return
		}
		logger.InfoContext(ctx, "account created", "user_id", session.User.ID)
	}()

	if email == "" || !strings.Contains(email, "@") {
		return gateway.Session{}, invalid("a valid email is required")
	}
	if len(credentials.Password) < 6 {
		return gateway.Session{}, invalid("password should be at least 6 characters")
	}

	if _, lookupErr := g.storage.GetAccountByEmail(ctx, email); lookupErr == nil {
		return gateway.Session{}, gateway.ErrAlreadyRegistered
	} else if !errors.Is(lookupErr, persistence.ErrNotFound) {
		return gateway.Session{}, mapError(lookupErr)
	}

	hash, err := HashPassword(credentials.Password, g.passwordParams)
	if err != nil {
		return gateway.Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := g.now().UTC()
	account := persistence.Account{ID: g.newID(), Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err = g.storage.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, persistence.ErrAlreadyExists) {
			return gateway.Session{}, gateway.ErrAlreadyRegistered
		}
		return gateway.Session{}, mapError(err)
	}

	username, _, _ := strings.Cut(email, "@")
	if err = g.storage.UpsertProfile(ctx, persistence.Profile{ID: account.ID, Username: username, LastSeen: now}); err != nil {
		return gateway.Session{}, mapError(err)
	}

	return g.issueSession(gateway.User{ID: account.ID, Email: email})
}

// SignIn verifies the password and returns a fresh session. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (g *Gateway) SignIn(ctx context.Context, credentials gateway.Credentials) (session gateway.Session, err error) {
	email := normalizeEmail(credentials.Email)
	logger := g.log(ctx, "SignIn", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "sign-in rejected", "error", err)
			return
		}
		logger.InfoContext(ctx, "signed in", "user_id", session.User.ID)
	}()

	account, err := g.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return gateway.Session{}, gateway.ErrInvalidCredentials
		}
		return gateway.Session{}, mapError(err)
	}
	if err = VerifyPassword(account.PasswordHash, credentials.Password); err != nil {
		return gateway.Session{}, gateway.ErrInvalidCredentials
	}

	if touchErr := g.storage.TouchLastSeen(ctx, account.ID, g.now().UTC()); touchErr != nil {
		logger.WarnContext(ctx, "failed to record last seen", "error", touchErr)
	}
	return g.issueSession(gateway.User{ID: account.ID, Email: account.Email})
}

var oauthEndpoints = map[string]string{
	"github":   "https://github.com/login/oauth/authorize",
	"facebook": "https://www.facebook.com/v19.0/dialog/oauth",
}

// SignInWithProvider returns the provider's authorization URL.
func (g *Gateway) SignInWithProvider(ctx context.Context, provider, redirectTo string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	endpoint, known := oauthEndpoints[provider]
	clientID := g.oauthClientIDs[provider]
	if !known || clientID == "" {
		return "", fmt.Errorf("%w: %s", gateway.ErrUnsupportedProvider, provider)
	}

	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectTo)
	params.Set("response_type", "code")
	params.Set("state", g.newID())
	g.log(ctx, "SignInWithProvider", "provider", provider).InfoContext(ctx, "oauth redirect issued")
	return endpoint + "?" + params.Encode(), nil
}

// SignOut is a no-op: access tokens are self-contained and expire on their own.
func (g *Gateway) SignOut(context.Context) error {
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
