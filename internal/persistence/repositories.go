package persistence

import (
	"context"
	"time"

	"github.com/example/eventhub/internal/query"
)

// AccountRepository stores credentials.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
}

// ProfileRepository stores public profiles.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
	ListProfiles(ctx context.Context, q query.Query) ([]Profile, error)
	TouchLastSeen(ctx context.Context, id string, seenAt time.Time) error
}

// EventRepository exposes CRUD operations for events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, q query.Query) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// TicketRepository stores purchased tickets.
type TicketRepository interface {
	// CreateTicket inserts the ticket and adds the buyer to the event
	// attendees. It fails with ErrCapacityReached once the event is full.
	CreateTicket(ctx context.Context, ticket Ticket) error
	ListTickets(ctx context.Context, q query.Query) ([]Ticket, error)
}

// RatingRepository stores event ratings keyed by (event, user).
type RatingRepository interface {
	UpsertRating(ctx context.Context, rating Rating) error
	ListRatings(ctx context.Context, q query.Query) ([]Rating, error)
	// AverageRating returns false when the event has no ratings.
	AverageRating(ctx context.Context, eventID string) (float64, bool, error)
}

// FriendshipRepository stores friendship rows.
type FriendshipRepository interface {
	CreateFriendship(ctx context.Context, friendship Friendship) error
	UpdateFriendshipStatus(ctx context.Context, userID, friendID, status string) error
	DeleteFriendship(ctx context.Context, userID, friendID string) error
	ListFriendships(ctx context.Context, q query.Query, side FriendshipSide) ([]Friendship, error)
}

// ChatRepository stores chat messages.
type ChatRepository interface {
	InsertMessage(ctx context.Context, message ChatMessage) error
	ListMessages(ctx context.Context, q query.Query) ([]ChatMessage, error)
}

// BreakoutRoomRepository stores breakout rooms.
type BreakoutRoomRepository interface {
	CreateBreakoutRoom(ctx context.Context, room BreakoutRoom) error
	ListBreakoutRooms(ctx context.Context, q query.Query) ([]BreakoutRoom, error)
}

// SettingsRepository stores one settings document per user.
type SettingsRepository interface {
	UpsertSettings(ctx context.Context, settings UserSettings) error
	GetSettings(ctx context.Context, userID string) (UserSettings, error)
}

// StateRepository keeps named client state records.
type StateRepository interface {
	// LoadState returns ErrNotFound when the slot has never been written.
	LoadState(ctx context.Context, slot string) ([]byte, error)
	SaveState(ctx context.Context, slot string, payload []byte) error
}
