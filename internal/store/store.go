// Package store holds the session-scoped client state: the signed-in user,
// the event collection, notifications and UI preferences.
//
// Every mutator applies one atomic transition. Observers registered with
// Subscribe receive the resulting snapshot after the transition, in the order
// the mutators were called. Mutators never fail; an identifier that matches
// nothing is ignored.
package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mutation names the mutator that produced a change.
type Mutation string

const (
	MutationSetUser                Mutation = "setUser"
	MutationAddEvent               Mutation = "addEvent"
	MutationUpdateEvent            Mutation = "updateEvent"
	MutationDeleteEvent            Mutation = "deleteEvent"
	MutationReplaceEvents          Mutation = "replaceEvents"
	MutationAddNotification        Mutation = "addNotification"
	MutationMarkNotificationAsRead Mutation = "markNotificationAsRead"
	MutationMarkAllAsRead          Mutation = "markAllNotificationsAsRead"
	MutationToggleDarkMode         Mutation = "toggleDarkMode"
	MutationSetSelectedDate        Mutation = "setSelectedDate"
)

// Change describes one committed transition.
type Change struct {
	Version  uint64
	Mutation Mutation
	Snapshot Snapshot
}

// Observer is notified after every committed transition. Observers run on the
// goroutine that called the mutator and must not call mutators themselves.
type Observer func(Change)

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator overrides notification identifier generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.newID = next
		}
	}
}

// WithClock overrides the time source used for notification timestamps and
// the default selected date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the single source of truth for client state.
type Store struct {
	// dispatch serialises commit+notify so observers see transitions in order.
	dispatch sync.Mutex
	mu       sync.RWMutex
	state    Snapshot
	version  uint64

	observers   map[uint64]Observer
	observerSeq uint64
	observerMu  sync.Mutex
	newID       func() string
	now         func() time.Time
}

// New constructs an empty store. The selected date defaults to now.
func New(opts ...Option) *Store {
	s := &Store{
		observers: make(map[uint64]Observer),
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = Snapshot{
		Events:        []Event{},
		Notifications: []Notification{},
		SelectedDate:  s.now().UTC().Format(time.RFC3339Nano),
	}
	return s
}

// NewFromSnapshot constructs a store whose initial state is the provided
// snapshot, typically one read back from durable storage.
func NewFromSnapshot(initial Snapshot, opts ...Option) *Store {
	s := New(opts...)
	s.state = normalize(initial.clone(), s.state.SelectedDate)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Version returns the number of transitions committed so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers an observer and returns a function that removes it.
// The returned function is safe to call more than once.
func (s *Store) Subscribe(observer Observer) func() {
	if observer == nil {
		return func() {}
	}
	s.observerMu.Lock()
	s.observerSeq++
	id := s.observerSeq
	s.observers[id] = observer
	s.observerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.observerMu.Lock()
			delete(s.observers, id)
			s.observerMu.Unlock()
		})
	}
}

// SetUser replaces the active user. Nil signs the session out.
func (s *Store) SetUser(user *User) {
	s.apply(MutationSetUser, func(state *Snapshot) {
		if user == nil {
			state.User = nil
			return
		}
		clone := *user
		state.User = &clone
	})
}

// AddEvent appends the event and, in the same transition, a success
// notification addressed to the current user.
func (s *Store) AddEvent(event Event) {
	s.apply(MutationAddEvent, func(state *Snapshot) {
		state.Events = append(state.Events, event.clone())

		userID := ""
		if state.User != nil {
			userID = state.User.ID
		}
		state.Notifications = append(state.Notifications, s.newNotification(NotificationInput{
			UserID:  userID,
			Title:   "New Event Created",
			Message: fmt.Sprintf("Event \"%s\" has been created successfully.", event.Title),
			Type:    SeveritySuccess,
		}))
	})
}

// UpdateEvent merges patch into the event with the given id.
func (s *Store) UpdateEvent(id string, patch EventPatch) {
	s.apply(MutationUpdateEvent, func(state *Snapshot) {
		for i := range state.Events {
			if state.Events[i].ID == id {
				state.Events[i] = state.Events[i].merge(patch)
			}
		}
	})
}

// DeleteEvent removes the event with the given id. Notifications that mention
// it are kept.
func (s *Store) DeleteEvent(id string) {
	s.apply(MutationDeleteEvent, func(state *Snapshot) {
		kept := make([]Event, 0, len(state.Events))
		for _, event := range state.Events {
			if event.ID != id {
				kept = append(kept, event)
			}
		}
		state.Events = kept
	})
}

// ReplaceEvents swaps the whole event collection, used after a refresh from
// the gateway. No notifications are emitted.
func (s *Store) ReplaceEvents(events []Event) {
	s.apply(MutationReplaceEvents, func(state *Snapshot) {
		replaced := make([]Event, len(events))
		for i, event := range events {
			replaced[i] = event.clone()
		}
		state.Events = replaced
	})
}

// AddNotification assigns an identifier and timestamp to the input and
// appends it. The stored notification is returned.
func (s *Store) AddNotification(input NotificationInput) Notification {
	var added Notification
	s.apply(MutationAddNotification, func(state *Snapshot) {
		added = s.newNotification(input)
		state.Notifications = append(state.Notifications, added)
	})
	return added
}

// MarkNotificationAsRead sets the read flag of the matching notification.
func (s *Store) MarkNotificationAsRead(id string) {
	s.apply(MutationMarkNotificationAsRead, func(state *Snapshot) {
		for i := range state.Notifications {
			if state.Notifications[i].ID == id {
				state.Notifications[i].Read = true
			}
		}
	})
}

// MarkAllNotificationsAsRead sets the read flag on every notification.
func (s *Store) MarkAllNotificationsAsRead() {
	s.apply(MutationMarkAllAsRead, func(state *Snapshot) {
		for i := range state.Notifications {
			state.Notifications[i].Read = true
		}
	})
}

// ToggleDarkMode flips the dark-mode preference.
func (s *Store) ToggleDarkMode() {
	s.apply(MutationToggleDarkMode, func(state *Snapshot) {
		state.DarkMode = !state.DarkMode
	})
}

// SetSelectedDate stores the calendar selection verbatim.
func (s *Store) SetSelectedDate(date string) {
	s.apply(MutationSetSelectedDate, func(state *Snapshot) {
		state.SelectedDate = date
	})
}

func (s *Store) newNotification(input NotificationInput) Notification {
	return Notification{
		ID:        s.newID(),
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Read:      input.Read,
		CreatedAt: s.now().UTC(),
	}
}

// apply mutates a private copy of the state and publishes it in one step.
func (s *Store) apply(mutation Mutation, mutate func(state *Snapshot)) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	next := s.state.clone()
	mutate(&next)
	s.state = next
	s.version++
	change := Change{Version: s.version, Mutation: mutation, Snapshot: next.clone()}
	s.mu.Unlock()

	for _, observer := range s.observerList() {
		observer(change)
	}
}

func (s *Store) observerList() []Observer {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()

	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.observers[id])
	}
	return out
}

func normalize(state Snapshot, defaultDate string) Snapshot {
	if state.Events == nil {
		state.Events = []Event{}
	}
	if state.Notifications == nil {
		state.Notifications = []Notification{}
	}
	if state.SelectedDate == "" {
		state.SelectedDate = defaultDate
	}
	return state
}
