// Package gateway defines the remote data contract used by the client: session
// operations, resource collections, one aggregate query and real-time chat
// subscriptions. Two implementations exist: local serves the contract from
// storage inside the gateway process, httpclient speaks to that process over
// HTTP and WebSocket.
package gateway

import (
	"context"
	"errors"

	"github.com/example/eventhub/internal/query"
)

var (
	// ErrAlreadyRegistered is returned by SignUp when the email has an account.
	ErrAlreadyRegistered = errors.New("gateway: user already registered")
	// ErrInvalidCredentials is returned by SignIn for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("gateway: invalid login credentials")
	// ErrUnauthorized is returned when no valid session accompanies a request.
	ErrUnauthorized = errors.New("gateway: unauthorized")
	// ErrForbidden is returned when the session may not touch the resource.
	ErrForbidden = errors.New("gateway: forbidden")
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("gateway: not found")
	// ErrConflict is returned when a write collides with an existing row.
	ErrConflict = errors.New("gateway: conflict")
	// ErrCapacityReached is returned when an event has sold all its seats.
	ErrCapacityReached = errors.New("gateway: event capacity reached")
	// ErrInvalidRequest is returned when the request violates a constraint.
	ErrInvalidRequest = errors.New("gateway: invalid request")
	// ErrUnsupportedProvider is returned for a third-party sign-in provider
	// that is not configured.
	ErrUnsupportedProvider = errors.New("gateway: unsupported provider")
)

// AverageEventRating is the aggregate returning the mean rating of an event.
const AverageEventRating = "get_average_event_rating"

// ChatChannel names the real-time channel that carries an event's chat.
func ChatChannel(eventID string) string {
	return "chat:" + eventID
}

// Auth covers the session operations.
type Auth interface {
	SignUp(ctx context.Context, credentials Credentials) (Session, error)
	SignIn(ctx context.Context, credentials Credentials) (Session, error)
	// SignInWithProvider returns the URL the user must visit to complete a
	// third-party sign-in; the provider sends them back to redirectTo.
	SignInWithProvider(ctx context.Context, provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
}

// Events is the events collection.
type Events interface {
	ListEvents(ctx context.Context, q query.Query) ([]Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Tickets is the tickets collection.
type Tickets interface {
	// CreateTicket fails with ErrCapacityReached when the event is sold out.
	CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error)
	ListTickets(ctx context.Context, q query.Query) ([]Ticket, error)
}

// Ratings is the event ratings collection, keyed by (event, user).
type Ratings interface {
	ListRatings(ctx context.Context, eventID string, q query.Query) ([]Rating, error)
	UpsertRating(ctx context.Context, rating Rating) (Rating, error)
}

// Aggregates runs named scalar queries. A nil result means the aggregate
// had no input rows.
type Aggregates interface {
	CallScalar(ctx context.Context, name string, args map[string]string) (*float64, error)
}

// Profiles is the public profile collection.
type Profiles interface {
	ListProfiles(ctx context.Context, q query.Query) ([]Profile, error)
}

// Friendships is the friendship collection.
type Friendships interface {
	ListFriendships(ctx context.Context, q query.Query, side Side) ([]Friendship, error)
	CreateFriendship(ctx context.Context, friendship Friendship) error
	UpdateFriendship(ctx context.Context, userID, friendID, status string) error
	DeleteFriendship(ctx context.Context, userID, friendID string) error
}

// Chat holds event room messages and their live feed.
type Chat interface {
	ListMessages(ctx context.Context, eventID string, q query.Query) ([]ChatMessage, error)
	SendMessage(ctx context.Context, message ChatMessage) (ChatMessage, error)
	// Subscribe delivers messages inserted into the event's room after the
	// call returns. Once the Subscription is closed the handler is not
	// invoked again.
	Subscribe(ctx context.Context, eventID string, handler func(ChatMessage)) (Subscription, error)
}

// BreakoutRooms lists the side rooms of virtual events.
type BreakoutRooms interface {
	ListBreakoutRooms(ctx context.Context, eventID string, q query.Query) ([]BreakoutRoom, error)
}

// Settings stores one settings document per user.
type Settings interface {
	GetSettings(ctx context.Context, userID string) (UserSettings, error)
	SaveSettings(ctx context.Context, settings UserSettings) error
}

// Subscription is a cancellable real-time registration.
type Subscription interface {
	Close() error
}

// Gateway is the complete remote data contract.
type Gateway interface {
	Auth
	Events
	Tickets
	Ratings
	Aggregates
	Profiles
	Friendships
	Chat
	BreakoutRooms
	Settings
}
