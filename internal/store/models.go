package store

import "time"

// Role is the authorization tier of the signed-in user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// User is the authenticated account for the current session.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role"`
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is the client copy of an event owned by the session.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	EndDate     time.Time   `json:"endDate"`
	Location    string      `json:"location"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Capacity    int         `json:"capacity"`
	Attendees   []string    `json:"attendees"`
	Organizer   string      `json:"organizer"`
	IsVirtual   bool        `json:"isVirtual"`
	StreamURL   string      `json:"streamUrl,omitempty"`
	Tags        []string    `json:"tags"`
	Status      EventStatus `json:"status"`
}

// EventPatch carries the fields to merge into an existing event. Nil fields
// are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	EndDate     *time.Time
	Location    *string
	Image       *string
	Category    *string
	Price       *float64
	Capacity    *int
	Attendees   []string
	Organizer   *string
	IsVirtual   *bool
	StreamURL   *string
	Tags        []string
	Status      *EventStatus
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a message addressed to a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationInput is a notification before the store assigns its
// identifier and timestamp.
type NotificationInput struct {
	UserID  string
	Title   string
	Message string
	Type    Severity
	Read    bool
}

// Snapshot is an immutable view of the complete store state.
type Snapshot struct {
	User          *User          `json:"user"`
	Events        []Event        `json:"events"`
	Notifications []Notification `json:"notifications"`
	DarkMode      bool           `json:"darkMode"`
	SelectedDate  string         `json:"selectedDate"`
}

// IsAuthenticated reports whether a user is signed in.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		DarkMode:     s.DarkMode,
		SelectedDate: s.SelectedDate,
	}
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	if s.Events != nil {
		out.Events = make([]Event, len(s.Events))
		for i, event := range s.Events {
			out.Events[i] = event.clone()
		}
	}
	if s.Notifications != nil {
		out.Notifications = make([]Notification, len(s.Notifications))
		copy(out.Notifications, s.Notifications)
	}
	return out
}

func (e Event) clone() Event {
	e.Attendees = cloneStrings(e.Attendees)
	e.Tags = cloneStrings(e.Tags)
	return e
}

func (e Event) merge(patch EventPatch) Event {
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Image != nil {
		e.Image = *patch.Image
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Price != nil {
		e.Price = *patch.Price
	}
	if patch.Capacity != nil {
		e.Capacity = *patch.Capacity
	}
	if patch.Attendees != nil {
		e.Attendees = cloneStrings(patch.Attendees)
	}
	if patch.Organizer != nil {
		e.Organizer = *patch.Organizer
	}
	if patch.IsVirtual != nil {
		e.IsVirtual = *patch.IsVirtual
	}
	if patch.StreamURL != nil {
		e.StreamURL = *patch.StreamURL
	}
	if patch.Tags != nil {
		e.Tags = cloneStrings(patch.Tags)
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	return e
}

// PatchFromEvent builds a patch that overwrites every field of an event
// except its identifier.
func PatchFromEvent(e Event) EventPatch {
	return EventPatch{
		Title:       &e.Title,
		Description: &e.Description,
		Date:        &e.Date,
		EndDate:     &e.EndDate,
		Location:    &e.Location,
		Image:       &e.Image,
		Category:    &e.Category,
		Price:       &e.Price,
		Capacity:    &e.Capacity,
		Attendees:   nonNil(e.Attendees),
		Organizer:   &e.Organizer,
		IsVirtual:   &e.IsVirtual,
		StreamURL:   &e.StreamURL,
		Tags:        nonNil(e.Tags),
		Status:      &e.Status,
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return cloneStrings(values)
}
