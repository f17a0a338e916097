package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
	"github.com/example/eventhub/internal/store"
)

// EventInput carries the editable fields of an event.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	Image       string
	Category    string
	Price       float64
	Capacity    int
	IsVirtual   bool
	StreamURL   string
	Tags        []string
	Status      store.EventStatus
}

// EventService keeps the gateway's events collection and the store's copy in
// step.
type EventService struct {
	events      gateway.Events
	store       *store.Store
	idGenerator func() string
	logger      *slog.Logger
}

// NewEventService constructs an EventService. A nil idGenerator produces
// random UUIDs.
func NewEventService(events gateway.Events, st *store.Store, idGenerator func() string) *EventService {
	return NewEventServiceWithLogger(events, st, idGenerator, nil)
}

// NewEventServiceWithLogger constructs an EventService with a specified logger.
func NewEventServiceWithLogger(events gateway.Events, st *store.Store, idGenerator func() string, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &EventService{events: events, store: st, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create validates the input and creates an event organized by the current
// user. The store gains the event and one success notification.
func (s *EventService) Create(ctx context.Context, input EventInput) (event store.Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("EventService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "title", input.Title)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	user := s.store.Snapshot().User
	if user == nil {
		err = ErrUnauthorized
		return
	}

	input = normalizeEventInput(input)
	if vErr := validateEventInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := eventFromInput(s.idGenerator(), user.ID, input)
	candidate.Attendees = []string{}

	var created gateway.Event
	created, err = s.events.CreateEvent(ctx, candidate)
	if err != nil {
		return
	}

	event = toStoreEvent(created)
	s.store.AddEvent(event)
	return
}

// Update replaces the editable fields of an event the current user organizes.
// Attendees are preserved.
func (s *EventService) Update(ctx context.Context, id string, input EventInput) (event store.Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("EventService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	user := s.store.Snapshot().User
	if user == nil {
		err = ErrUnauthorized
		return
	}

	input = normalizeEventInput(input)
	if vErr := validateEventInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	var existing gateway.Event
	existing, err = s.events.GetEvent(ctx, id)
	if err != nil {
		err = mapNotFound(err)
		return
	}
	if existing.OrganizerID != user.ID {
		err = gateway.ErrForbidden
		return
	}

	candidate := eventFromInput(id, existing.OrganizerID, input)
	candidate.Attendees = existing.Attendees
	candidate.CreatedAt = existing.CreatedAt

	var updated gateway.Event
	updated, err = s.events.UpdateEvent(ctx, candidate)
	if err != nil {
		return
	}

	event = toStoreEvent(updated)
	s.store.UpdateEvent(id, patchFromEvent(event))
	return
}

// Delete removes the event from the gateway, then from the store.
func (s *EventService) Delete(ctx context.Context, id string) (err error) {
	if s == nil || s.events == nil {
		return fmt.Errorf("EventService is not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	if s.store.Snapshot().User == nil {
		return ErrUnauthorized
	}
	if err = s.events.DeleteEvent(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.store.DeleteEvent(id)
	return nil
}

// Refresh reloads every event ordered by start date and swaps the store
// collection in one transition.
func (s *EventService) Refresh(ctx context.Context) ([]store.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("EventService is not configured")
	}

	rows, err := s.events.ListEvents(ctx, query.New().Order("start_date", false))
	if err != nil {
		s.loggerWith(ctx, "Refresh").ErrorContext(ctx, "failed to load events", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	events := make([]store.Event, len(rows))
	for i, row := range rows {
		events[i] = toStoreEvent(row)
	}
	s.store.ReplaceEvents(events)
	s.loggerWith(ctx, "Refresh").DebugContext(ctx, "events refreshed", "count", len(events))
	return events, nil
}

// ShareURL returns the public link of an event.
func ShareURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + "/event/" + id
}

func mapNotFound(err error) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func normalizeEventInput(input EventInput) EventInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Category = strings.TrimSpace(input.Category)
	input.StreamURL = strings.TrimSpace(input.StreamURL)
	if input.Status == "" {
		input.Status = store.EventStatusPublished
	}
	if !input.IsVirtual {
		input.StreamURL = ""
	}
	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	input.Tags = tags
	return input
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start date is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end date is required")
	} else if !input.Start.IsZero() && input.End.Before(input.Start) {
		vErr.add("end", "end date must not be before the start date")
	}
	if input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}
	if input.Capacity < 1 {
		vErr.add("capacity", "capacity must be at least 1")
	}
	if input.IsVirtual {
		if input.StreamURL == "" {
			vErr.add("streamUrl", "stream URL is required for virtual events")
		} else if u, err := url.ParseRequestURI(input.StreamURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			vErr.add("streamUrl", "stream URL must be a valid http(s) URL")
		}
	}
	switch input.Status {
	case store.EventStatusDraft, store.EventStatusPublished, store.EventStatusCancelled:
	default:
		vErr.add("status", "status must be draft, published or cancelled")
	}
	return vErr
}

func eventFromInput(id, organizerID string, input EventInput) gateway.Event {
	return gateway.Event{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.Start.UTC(),
		EndDate:     input.End.UTC(),
		Location:    input.Location,
		ImageURL:    input.Image,
		Category:    input.Category,
		Price:       input.Price,
		Capacity:    input.Capacity,
		OrganizerID: organizerID,
		IsVirtual:   input.IsVirtual,
		StreamURL:   input.StreamURL,
		Status:      string(input.Status),
		Tags:        input.Tags,
	}
}

func toStoreEvent(event gateway.Event) store.Event {
	attendees := event.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	tags := event.Tags
	if tags == nil {
		tags = []string{}
	}
	return store.Event{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.StartDate,
		EndDate:     event.EndDate,
		Location:    event.Location,
		Image:       event.ImageURL,
		Category:    event.Category,
		Price:       event.Price,
		Capacity:    event.Capacity,
		Attendees:   attendees,
		Organizer:   event.OrganizerID,
		IsVirtual:   event.IsVirtual,
		StreamURL:   event.StreamURL,
		Tags:        tags,
		Status:      store.EventStatus(event.Status),
	}
}

func patchFromEvent(event store.Event) store.EventPatch {
	return store.EventPatch{
		Title:       &event.Title,
		Description: &event.Description,
		Date:        &event.Date,
		EndDate:     &event.EndDate,
		Location:    &event.Location,
		Image:       &event.Image,
		Category:    &event.Category,
		Price:       &event.Price,
		Capacity:    &event.Capacity,
		Attendees:   event.Attendees,
		Organizer:   &event.Organizer,
		IsVirtual:   &event.IsVirtual,
		StreamURL:   &event.StreamURL,
		Tags:        event.Tags,
		Status:      &event.Status,
	}
}
