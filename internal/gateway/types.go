package gateway

import (
	"encoding/json"
	"time"
)

// Credentials are the email/password pair used by SignUp and SignIn.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User identifies the account behind a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an issued access token.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Event is an events row.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	OrganizerID string    `json:"organizer_id"`
	IsVirtual   bool      `json:"is_virtual"`
	StreamURL   string    `json:"stream_url,omitempty"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
	Attendees   []string  `json:"attendees"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ticket is a purchased seat.
type Ticket struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	TicketType    string    `json:"ticket_type"`
	Price         float64   `json:"price"`
	PaymentID     string    `json:"payment_id"`
	PaymentStatus string    `json:"payment_status"`
	QRCode        string    `json:"qr_code"`
	IsUsed        bool      `json:"is_used"`
	CreatedAt     time.Time `json:"created_at"`
}

// Rating is one user's score for an event.
type Rating struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the public face of an account.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Website   string    `json:"website"`
	LastSeen  time.Time `json:"last_seen"`
}

// Side picks which party's profile is attached to listed friendships.
type Side string

const (
	SideFriend    Side = "friend"
	SideRequester Side = "requester"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is a directed relation from UserID to FriendID.
type Friendship struct {
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Status    string    `json:"status"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one message in an event room.
type ChatMessage struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// BreakoutRoom is a side room of a virtual event.
type BreakoutRoom struct {
	ID                  string `json:"id"`
	EventID             string `json:"event_id"`
	Name                string `json:"name"`
	Capacity            int    `json:"capacity"`
	StreamURL           string `json:"stream_url"`
	CurrentParticipants int    `json:"current_participants"`
}

// UserSettings is a user's stored settings document.
type UserSettings struct {
	UserID    string          `json:"user_id"`
	Settings  json.RawMessage `json:"settings"`
	UpdatedAt time.Time       `json:"updated_at"`
}
