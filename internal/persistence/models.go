package persistence

import "time"

// Account holds the credentials of a registered user.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public face of an account.
type Profile struct {
	ID        string
	Username  string
	FullName  string
	AvatarURL string
	Website   string
	LastSeen  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is a stored event row.
type Event struct {
	ID          string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	ImageURL    string
	Category    string
	Price       float64
	Capacity    int
	OrganizerID string
	IsVirtual   bool
	StreamURL   string
	Status      string
	Tags        []string
	Attendees   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ticket records a purchased seat.
type Ticket struct {
	ID            string
	EventID       string
	UserID        string
	TicketType    string
	Price         float64
	PaymentID     string
	PaymentStatus string
	QRCode        string
	IsUsed        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Rating is one user's score for an event. ReviewerName is filled from the
// reviewer's profile when listing.
type Rating struct {
	EventID      string
	UserID       string
	Rating       int
	Comment      string
	ReviewerName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Friendship is a directed relation from UserID to FriendID. Profile holds the
// counterpart selected by the listing side.
type Friendship struct {
	UserID    string
	FriendID  string
	Status    string
	Profile   Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FriendshipSide picks whose profile is attached to a listed friendship.
type FriendshipSide int

const (
	// SideFriend attaches the profile of FriendID.
	SideFriend FriendshipSide = iota
	// SideRequester attaches the profile of UserID.
	SideRequester
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// ChatMessage is one message posted in an event room.
type ChatMessage struct {
	ID        string
	EventID   string
	UserID    string
	Message   string
	CreatedAt time.Time
}

// BreakoutRoom is a side room attached to a virtual event.
type BreakoutRoom struct {
	ID                  string
	EventID             string
	Name                string
	Capacity            int
	StreamURL           string
	CurrentParticipants int
}

// UserSettings stores the encoded settings document of a user.
type UserSettings struct {
	UserID    string
	Payload   []byte
	UpdatedAt time.Time
}
