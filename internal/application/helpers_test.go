package application

import (
	"context"
	"testing"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/store"
	"github.com/example/eventhub/internal/testfixtures"
)

// client is one signed-in user's view: their own store over the shared
// gateway.
type client struct {
	store   *store.Store
	user    store.User
	session SessionSource
}

func newClient(t *testing.T, h *testfixtures.GatewayHarness, email string) client {
	t.Helper()

	st := store.New(store.WithClock(h.Clock.NowFunc()), store.WithIDGenerator(testfixtures.NewIDGenerator("note").NextFunc()))
	svc := NewSessionService(h.Gateway, st, "http://localhost:5173")
	user, err := svc.SignUp(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("SignUp(%s) failed: %v", email, err)
	}
	return client{store: st, user: user, session: StoreSession(st)}
}

type authStub struct {
	session   gateway.Session
	err       error
	signOuts  int
	redirects []string
}

func (s *authStub) SignUp(context.Context, gateway.Credentials) (gateway.Session, error) {
	return s.session, s.err
}

func (s *authStub) SignIn(context.Context, gateway.Credentials) (gateway.Session, error) {
	return s.session, s.err
}

func (s *authStub) SignInWithProvider(_ context.Context, provider, redirectTo string) (string, error) {
	s.redirects = append(s.redirects, redirectTo)
	return "https://" + provider + ".example.com/authorize", s.err
}

func (s *authStub) SignOut(context.Context) error {
	s.signOuts++
	return s.err
}
