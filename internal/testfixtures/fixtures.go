package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/store"
)

var (
	accountCounter uint64
	eventCounter   uint64
)

var referenceTime = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Account fixtures ----------------------------

// AccountFixture represents a deterministic account with its profile.
type AccountFixture struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	LastSeen     time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional
// overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := AccountFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FullName:     fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		LastSeen:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id string) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithAccountEmail overrides the generated email address.
func WithAccountEmail(email string) AccountOption {
	return func(f *AccountFixture) {
		f.Email = email
	}
}

// WithAccountFullName overrides the profile name.
func WithAccountFullName(name string) AccountOption {
	return func(f *AccountFixture) {
		f.FullName = name
	}
}

// WithAccountLastSeen overrides the profile activity timestamp.
func WithAccountLastSeen(t time.Time) AccountOption {
	return func(f *AccountFixture) {
		f.LastSeen = t
	}
}

// Account materialises the credentials row.
func (f AccountFixture) Account() persistence.Account {
	return persistence.Account{ID: f.ID, Email: f.Email, PasswordHash: f.PasswordHash}
}

// Profile materialises the profile row.
func (f AccountFixture) Profile() persistence.Profile {
	return persistence.Profile{ID: f.ID, FullName: f.FullName, LastSeen: f.LastSeen}
}

// User materialises the client-side user.
func (f AccountFixture) User() store.User {
	return store.User{ID: f.ID, Email: f.Email, Name: f.FullName, Role: store.RoleAttendee}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event.
type EventFixture struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	Category    string
	Price       float64
	Capacity    int
	OrganizerID string
	IsVirtual   bool
	StreamURL   string
	Status      string
	Tags        []string
	Attendees   []string
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture starting one day
// after ReferenceTime plus one hour per generated fixture.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(24*time.Hour + time.Duration(idx)*time.Hour)
	fixture := EventFixture{
		ID:          fmt.Sprintf("event-%03d", idx),
		Title:       fmt.Sprintf("Event %03d", idx),
		Description: "Community meetup",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Location:    "Main Hall",
		Category:    "running",
		Price:       10,
		Capacity:    50,
		OrganizerID: "organizer-1",
		Status:      string(store.EventStatusPublished),
		Tags:        []string{},
		Attendees:   []string{},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventStartEnd overrides both bounds.
func WithEventStartEnd(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEventPrice overrides the ticket price.
func WithEventPrice(price float64) EventOption {
	return func(f *EventFixture) {
		f.Price = price
	}
}

// WithEventCapacity overrides the seat count.
func WithEventCapacity(capacity int) EventOption {
	return func(f *EventFixture) {
		f.Capacity = capacity
	}
}

// WithEventOrganizer overrides the organizer.
func WithEventOrganizer(id string) EventOption {
	return func(f *EventFixture) {
		f.OrganizerID = id
	}
}

// WithEventAttendees overrides the attendee list.
func WithEventAttendees(ids ...string) EventOption {
	return func(f *EventFixture) {
		f.Attendees = append([]string{}, ids...)
	}
}

// WithEventTags overrides the tag set.
func WithEventTags(tags ...string) EventOption {
	return func(f *EventFixture) {
		f.Tags = append([]string{}, tags...)
	}
}

// WithVirtualStream marks the event as virtual with the given stream.
func WithVirtualStream(url string) EventOption {
	return func(f *EventFixture) {
		f.IsVirtual = true
		f.StreamURL = url
	}
}

// Persistence materialises the stored event row.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		StartDate:   f.Start,
		EndDate:     f.End,
		Location:    f.Location,
		Category:    f.Category,
		Price:       f.Price,
		Capacity:    f.Capacity,
		OrganizerID: f.OrganizerID,
		IsVirtual:   f.IsVirtual,
		StreamURL:   f.StreamURL,
		Status:      f.Status,
		Tags:        append([]string{}, f.Tags...),
		Attendees:   append([]string{}, f.Attendees...),
	}
}

// Store materialises the client-side event.
func (f EventFixture) Store() store.Event {
	return store.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Start,
		EndDate:     f.End,
		Location:    f.Location,
		Category:    f.Category,
		Price:       f.Price,
		Capacity:    f.Capacity,
		Attendees:   append([]string{}, f.Attendees...),
		Organizer:   f.OrganizerID,
		IsVirtual:   f.IsVirtual,
		StreamURL:   f.StreamURL,
		Tags:        append([]string{}, f.Tags...),
		Status:      store.EventStatus(f.Status),
	}
}
