package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/gateway/httpclient"
	gatewayhttp "github.com/example/eventhub/internal/http"
	"github.com/example/eventhub/internal/query"
	"github.com/example/eventhub/internal/testfixtures"
)

func newServer(t *testing.T) (*httptest.Server, *testfixtures.GatewayHarness) {
	t.Helper()

	harness := testfixtures.NewGatewayHarness(t, testfixtures.WithOAuthClient("github", "gh-client"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chat := gatewayhttp.NewChatHandler(harness.Gateway, logger)
	router := gatewayhttp.NewRouter(gatewayhttp.RouterConfig{
		Auth:    gatewayhttp.NewAuthHandler(harness.Gateway, "http://localhost:5173", logger),
		Events:  gatewayhttp.NewEventHandler(harness.Gateway, logger),
		Social:  gatewayhttp.NewSocialHandler(harness.Gateway, logger),
		Chat:    chat,
		Session: gatewayhttp.RequireSession(harness.Gateway, logger),
	})
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		chat.Close()
		server.Close()
	})
	return server, harness
}

func newClient(t *testing.T, server *httptest.Server, email string) (*httpclient.Client, gateway.Session) {
	t.Helper()
	client, err := httpclient.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	session, err := client.SignUp(context.Background(), gateway.Credentials{Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	return client, session
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := httpclient.New("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	client, err := httpclient.New("http://localhost:8080/", httpclient.WithToken("abc"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.Token() != "abc" {
		t.Fatalf("expected initial token, got %q", client.Token())
	}
}

func TestClient_Auth(t *testing.T) {
	t.Parallel()
	server, _ := newServer(t)
	ctx := context.Background()

	client, session := newClient(t, server, "ada@example.com")
	if client.Token() != session.AccessToken || session.AccessToken == "" {
		t.Fatalf("expected the client to keep the issued token")
	}

	other, err := httpclient.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := other.SignUp(ctx, gateway.Credentials{Email: "ada@example.com", Password: "secret1"}); !errors.Is(err, gateway.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := other.SignIn(ctx, gateway.Credentials{Email: "ada@example.com", Password: "wrong12"}); err != gateway.ErrInvalidCredentials {
		t.Fatalf("expected bare ErrInvalidCredentials, got %v", err)
	}
	if _, err := other.SignUp(ctx, gateway.Credentials{Email: "bob@example.com", Password: "123"}); !errors.Is(err, gateway.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for short password, got %v", err)
	}
	if _, err := other.ListEvents(ctx, query.New()); !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without a session, got %v", err)
	}

	location, err := client.SignInWithProvider(ctx, "github", "http://localhost:3000/callback")
	if err != nil {
		t.Fatalf("SignInWithProvider returned error: %v", err)
	}
	if !strings.HasPrefix(location, "https://github.com/") || !strings.Contains(location, "client_id=gh-client") {
		t.Fatalf("unexpected provider url: %s", location)
	}
	if _, err := client.SignInWithProvider(ctx, "facebook", ""); !errors.Is(err, gateway.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}

	if err := client.SignOut(ctx); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if client.Token() != "" {
		t.Fatalf("expected token to be cleared")
	}
	if _, err := client.ListEvents(ctx, query.New()); !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after sign out, got %v", err)
	}

	if _, err := client.SignIn(ctx, gateway.Credentials{Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if client.Token() == "" {
		t.Fatalf("expected token after sign in")
	}
}

func TestClient_EventsAndTickets(t *testing.T) {
	t.Parallel()
	server, _ := newServer(t)
	ctx := context.Background()
	ada, adaSession := newClient(t, server, "ada@example.com")
	bob, bobSession := newClient(t, server, "bob@example.com")

	start := testfixtures.ReferenceTime().Add(72 * time.Hour)
	event, err := ada.CreateEvent(ctx, gateway.Event{
		Title:     "Powerlifting Meet",
		Category:  "weightlifting",
		StartDate: start,
		EndDate:   start.Add(3 * time.Hour),
		Capacity:  1,
		Price:     20,
		Tags:      []string{"strength"},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if event.ID == "" || event.OrganizerID != adaSession.User.ID {
		t.Fatalf("unexpected created event: %+v", event)
	}

	listed, err := bob.ListEvents(ctx, query.New().Eq("category", "weightlifting").Order("start_date", false).WithLimit(10))
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != event.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	event.Title = "Stolen"
	if _, err := bob.UpdateEvent(ctx, event); !errors.Is(err, gateway.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	event.Title = "Regional Powerlifting Meet"
	updated, err := ada.UpdateEvent(ctx, event)
	if err != nil {
		t.Fatalf("UpdateEvent returned error: %v", err)
	}
	if updated.Title != event.Title {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}

	ticket, err := bob.CreateTicket(ctx, gateway.Ticket{EventID: event.ID, TicketType: "General", Price: 20})
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}
	if ticket.UserID != bobSession.User.ID {
		t.Fatalf("expected ticket for bob, got %q", ticket.UserID)
	}
	if _, err := ada.CreateTicket(ctx, gateway.Ticket{EventID: event.ID, TicketType: "General"}); !errors.Is(err, gateway.ErrCapacityReached) {
		t.Fatalf("expected ErrCapacityReached, got %v", err)
	}
	tickets, err := bob.ListTickets(ctx, query.New())
	if err != nil || len(tickets) != 1 {
		t.Fatalf("expected one ticket, got %v (%v)", tickets, err)
	}

	average, err := bob.CallScalar(ctx, gateway.AverageEventRating, map[string]string{"event_id": event.ID})
	if err != nil || average != nil {
		t.Fatalf("expected nil average, got %v (%v)", average, err)
	}
	if _, err := bob.UpsertRating(ctx, gateway.Rating{EventID: event.ID, Rating: 5, Comment: "great"}); err != nil {
		t.Fatalf("UpsertRating returned error: %v", err)
	}
	ratings, err := ada.ListRatings(ctx, event.ID, query.New())
	if err != nil || len(ratings) != 1 || ratings[0].UserID != bobSession.User.ID {
		t.Fatalf("unexpected ratings %+v (%v)", ratings, err)
	}
	average, err = bob.CallScalar(ctx, gateway.AverageEventRating, map[string]string{"event_id": event.ID})
	if err != nil || average == nil || *average != 5 {
		t.Fatalf("expected average 5, got %v (%v)", average, err)
	}
	if _, err := bob.CallScalar(ctx, "unknown_function", nil); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown aggregate, got %v", err)
	}

	if _, err := bob.ListEvents(ctx, query.New().Order("organizer_secret", true)); !errors.Is(err, gateway.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown order field, got %v", err)
	}

	if err := ada.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if _, err := ada.GetEvent(ctx, event.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestClient_Social(t *testing.T) {
	t.Parallel()
	server, _ := newServer(t)
	ctx := context.Background()
	ada, adaSession := newClient(t, server, "ada@example.com")
	bob, bobSession := newClient(t, server, "bob@example.com")

	profiles, err := ada.ListProfiles(ctx, query.New().ILike("username", "bob"))
	if err != nil || len(profiles) != 1 || profiles[0].ID != bobSession.User.ID {
		t.Fatalf("unexpected profiles %+v (%v)", profiles, err)
	}

	if err := ada.CreateFriendship(ctx, gateway.Friendship{FriendID: bobSession.User.ID}); err != nil {
		t.Fatalf("CreateFriendship returned error: %v", err)
	}
	pending, err := bob.ListFriendships(ctx, query.New().Eq("friend_id", bobSession.User.ID).Eq("status", gateway.FriendshipPending), gateway.SideRequester)
	if err != nil || len(pending) != 1 || pending[0].Profile.ID != adaSession.User.ID {
		t.Fatalf("unexpected pending requests %+v (%v)", pending, err)
	}
	if err := bob.UpdateFriendship(ctx, adaSession.User.ID, bobSession.User.ID, gateway.FriendshipAccepted); err != nil {
		t.Fatalf("UpdateFriendship returned error: %v", err)
	}
	friends, err := ada.ListFriendships(ctx, query.New().Eq("user_id", adaSession.User.ID).Eq("status", gateway.FriendshipAccepted), gateway.SideFriend)
	if err != nil || len(friends) != 1 || friends[0].Profile.ID != bobSession.User.ID {
		t.Fatalf("unexpected friends %+v (%v)", friends, err)
	}
	if err := ada.DeleteFriendship(ctx, adaSession.User.ID, bobSession.User.ID); err != nil {
		t.Fatalf("DeleteFriendship returned error: %v", err)
	}

	if _, err := ada.GetSettings(ctx, adaSession.User.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}
	if err := ada.SaveSettings(ctx, gateway.UserSettings{Settings: []byte(`{"darkMode":true}`)}); err != nil {
		t.Fatalf("SaveSettings returned error: %v", err)
	}
	saved, err := ada.GetSettings(ctx, adaSession.User.ID)
	if err != nil || !strings.Contains(string(saved.Settings), "darkMode") {
		t.Fatalf("unexpected settings %+v (%v)", saved, err)
	}
}

func TestClient_Chat(t *testing.T) {
	t.Parallel()
	server, harness := newServer(t)
	ctx := context.Background()
	ada, adaSession := newClient(t, server, "ada@example.com")

	fixture := testfixtures.NewEventFixture(testfixtures.WithEventOrganizer(adaSession.User.ID))
	if err := harness.Store.CreateEvent(ctx, fixture.Persistence()); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if _, err := ada.Subscribe(ctx, "missing-event", func(gateway.ChatMessage) {}); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}

	received := make(chan gateway.ChatMessage, 4)
	sub, err := ada.Subscribe(ctx, fixture.ID, func(message gateway.ChatMessage) {
		received <- message
	})
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	sent, err := ada.SendMessage(ctx, gateway.ChatMessage{EventID: fixture.ID, Message: "warmup at 9"})
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}

	select {
	case message := <-received:
		if message.ID != sent.ID || message.Message != "warmup at 9" {
			t.Fatalf("unexpected delivery: %+v", message)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for chat delivery")
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	if _, err := ada.SendMessage(ctx, gateway.ChatMessage{EventID: fixture.ID, Message: "after close"}); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	select {
	case message := <-received:
		t.Fatalf("unexpected delivery after close: %+v", message)
	case <-time.After(100 * time.Millisecond):
	}

	history, err := ada.ListMessages(ctx, fixture.ID, query.New().Order("created_at", false))
	if err != nil || len(history) != 2 {
		t.Fatalf("unexpected history %+v (%v)", history, err)
	}
	rooms, err := ada.ListBreakoutRooms(ctx, fixture.ID, query.New())
	if err != nil || len(rooms) != 0 {
		t.Fatalf("expected no breakout rooms, got %+v (%v)", rooms, err)
	}

	if _, err := ada.SendMessage(ctx, gateway.ChatMessage{EventID: fixture.ID, Message: "   "}); !errors.Is(err, gateway.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank message, got %v", err)
	}
}
