package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/eventhub/internal/application"
	"github.com/example/eventhub/internal/config"
	"github.com/example/eventhub/internal/gateway/httpclient"
	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/persistence/sqlstore"
	"github.com/example/eventhub/internal/store"
)

// ratingCacheTTL bounds how long a rating summary is reused within one run.
const ratingCacheTTL = 30 * time.Second

// app holds the client state and services shared by every command.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	state       *sqlstore.Store
	store       *store.Store
	client      *httpclient.Client
	unsubscribe func()

	sessions *application.SessionService
	events   *application.EventService
	tickets  *application.TicketService
	ratings  *application.RatingService
	friends  *application.FriendService
	settings *application.SettingsService
	navi     *application.Navigator
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger, stdout, stderr io.Writer) (*app, error) {
	state, err := sqlstore.Open(ctx, cfg.StateDSN, sqlstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open client state: %w", err)
	}
	if err := state.Migrate(ctx); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("migrate client state: %w", err)
	}

	st, err := store.Rehydrate(ctx, state, cfg.StateSlot, store.WithIDGenerator(uuid.NewString))
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	token, err := loadToken(ctx, state, cfg.StateSlot)
	if err != nil {
		_ = state.Close()
		return nil, err
	}
	client, err := httpclient.New(cfg.GatewayURL, httpclient.WithLogger(logger), httpclient.WithToken(token))
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
		state:  state,
		store:  st,
		client: client,
	}
	a.unsubscribe = st.Subscribe(store.Persist(ctx, state, cfg.StateSlot, logger))

	session := application.StoreSession(st)
	a.sessions = application.NewSessionServiceWithLogger(client, st, cfg.PublicOrigin, logger)
	a.events = application.NewEventServiceWithLogger(client, st, uuid.NewString, logger)
	a.tickets = application.NewTicketServiceWithLogger(client, session, a.now, logger)
	a.ratings = application.NewRatingServiceWithLogger(client, session, a.now, ratingCacheTTL, logger)
	a.friends = application.NewFriendServiceWithLogger(client, session, logger)
	a.settings = application.NewSettingsServiceWithLogger(client, session, logger)
	a.navi = application.NewNavigator(func() bool { return st.Snapshot().IsAuthenticated() })
	return a, nil
}

// Close stops persisting snapshots and releases the state database.
func (a *app) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.state.Close()
}

func sessionSlot(slot string) string {
	return slot + ".session"
}

func loadToken(ctx context.Context, repo persistence.StateRepository, slot string) (string, error) {
	payload, err := repo.LoadState(ctx, sessionSlot(slot))
	if errors.Is(err, persistence.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return string(payload), nil
}

// saveToken stores the client's current access token; an empty token records
// a signed-out session.
func (a *app) saveToken(ctx context.Context) error {
	if err := a.state.SaveState(ctx, sessionSlot(a.cfg.StateSlot), []byte(a.client.Token())); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

func (a *app) notify(title, message string, severity store.Severity) {
	userID := ""
	if user := a.store.Snapshot().User; user != nil {
		userID = user.ID
	}
	a.store.AddNotification(store.NotificationInput{UserID: userID, Title: title, Message: message, Type: severity})
}

// describe renders err for the terminal. Authentication failures use the
// friendly messages shown on the sign-in form.
func describe(err error) string {
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, application.ErrUnauthorized):
		return "not signed in"
	default:
		return err.Error()
	}
}
