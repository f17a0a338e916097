package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

// ListEvents returns events matching q.
func (g *Gateway) ListEvents(ctx context.Context, q query.Query) ([]gateway.Event, error) {
	rows, err := g.storage.ListEvents(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.Event, len(rows))
	for i, row := range rows {
		out[i] = eventFromRow(row)
	}
	return out, nil
}

// GetEvent returns one event.
func (g *Gateway) GetEvent(ctx context.Context, id string) (gateway.Event, error) {
	row, err := g.storage.GetEvent(ctx, id)
	if err != nil {
		return gateway.Event{}, mapError(err)
	}
	return eventFromRow(row), nil
}

// CreateEvent stores a new event. An empty id is replaced by a generated one
// and an empty status defaults to published.
func (g *Gateway) CreateEvent(ctx context.Context, event gateway.Event) (gateway.Event, error) {
	if event.ID == "" {
		event.ID = g.newID()
	}
	if event.Status == "" {
		event.Status = "published"
	}
	if err := g.storage.CreateEvent(ctx, eventToRow(event)); err != nil {
		return gateway.Event{}, mapError(err)
	}
	return g.GetEvent(ctx, event.ID)
}

// UpdateEvent overwrites an existing event.
func (g *Gateway) UpdateEvent(ctx context.Context, event gateway.Event) (gateway.Event, error) {
	if event.Status == "" {
		event.Status = "published"
	}
	if err := g.storage.UpdateEvent(ctx, eventToRow(event)); err != nil {
		return gateway.Event{}, mapError(err)
	}
	return g.GetEvent(ctx, event.ID)
}

// DeleteEvent removes an event.
func (g *Gateway) DeleteEvent(ctx context.Context, id string) error {
	return mapError(g.storage.DeleteEvent(ctx, id))
}

// CreateTicket sells a seat; the buyer joins the event's attendees.
func (g *Gateway) CreateTicket(ctx context.Context, ticket gateway.Ticket) (gateway.Ticket, error) {
	if ticket.ID == "" {
		ticket.ID = g.newID()
	}
	if ticket.Price < 0 {
		return gateway.Ticket{}, invalid("price must not be negative")
	}
	row := persistence.Ticket{
		ID:            ticket.ID,
		EventID:       ticket.EventID,
		UserID:        ticket.UserID,
		TicketType:    ticket.TicketType,
		Price:         ticket.Price,
		PaymentID:     ticket.PaymentID,
		PaymentStatus: ticket.PaymentStatus,
		QRCode:        ticket.QRCode,
		IsUsed:        ticket.IsUsed,
	}
	if err := g.storage.CreateTicket(ctx, row); err != nil {
		err = mapError(err)
		g.log(ctx, "CreateTicket", "event_id", ticket.EventID).WarnContext(ctx, "ticket rejected", "error", err)
		return gateway.Ticket{}, err
	}
	stored, err := g.storage.ListTickets(ctx, query.New().Eq("id", ticket.ID))
	if err != nil {
		return gateway.Ticket{}, mapError(err)
	}
	if len(stored) == 0 {
		return gateway.Ticket{}, gateway.ErrNotFound
	}
	return ticketFromRow(stored[0]), nil
}

// ListTickets returns tickets matching q.
func (g *Gateway) ListTickets(ctx context.Context, q query.Query) ([]gateway.Ticket, error) {
	rows, err := g.storage.ListTickets(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.Ticket, len(rows))
	for i, row := range rows {
		out[i] = ticketFromRow(row)
	}
	return out, nil
}

// ListRatings returns the ratings of one event.
func (g *Gateway) ListRatings(ctx context.Context, eventID string, q query.Query) ([]gateway.Rating, error) {
	rows, err := g.storage.ListRatings(ctx, q.Eq("event_id", eventID))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.Rating, len(rows))
	for i, row := range rows {
		out[i] = ratingFromRow(row)
	}
	return out, nil
}

// UpsertRating inserts or replaces the (event, user) rating.
func (g *Gateway) UpsertRating(ctx context.Context, rating gateway.Rating) (gateway.Rating, error) {
	if rating.Rating < 1 || rating.Rating > 5 {
		return gateway.Rating{}, invalid("rating must be between 1 and 5")
	}
	if err := g.storage.UpsertRating(ctx, persistence.Rating{
		EventID: rating.EventID,
		UserID:  rating.UserID,
		Rating:  rating.Rating,
		Comment: rating.Comment,
	}); err != nil {
		return gateway.Rating{}, mapError(err)
	}
	stored, err := g.ListRatings(ctx, rating.EventID, query.New().Eq("user_id", rating.UserID))
	if err != nil {
		return gateway.Rating{}, err
	}
	if len(stored) == 0 {
		return gateway.Rating{}, gateway.ErrNotFound
	}
	return stored[0], nil
}

// CallScalar runs a named aggregate.
func (g *Gateway) CallScalar(ctx context.Context, name string, args map[string]string) (*float64, error) {
	switch name {
	case gateway.AverageEventRating:
		eventID := strings.TrimSpace(args["event_id"])
		if eventID == "" {
			return nil, invalid("event_id is required")
		}
		avg, ok, err := g.storage.AverageRating(ctx, eventID)
		if err != nil {
			return nil, mapError(err)
		}
		if !ok {
			return nil, nil
		}
		return &avg, nil
	default:
		return nil, fmt.Errorf("%w: function %s", gateway.ErrNotFound, name)
	}
}

// ListProfiles returns profiles matching q.
func (g *Gateway) ListProfiles(ctx context.Context, q query.Query) ([]gateway.Profile, error) {
	rows, err := g.storage.ListProfiles(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.Profile, len(rows))
	for i, row := range rows {
		out[i] = profileFromRow(row)
	}
	return out, nil
}

// ListFriendships returns friendships matching q with the profile of the
// chosen side attached.
func (g *Gateway) ListFriendships(ctx context.Context, q query.Query, side gateway.Side) ([]gateway.Friendship, error) {
	var rowSide persistence.FriendshipSide
	switch side {
	case gateway.SideFriend, "":
		rowSide = persistence.SideFriend
	case gateway.SideRequester:
		rowSide = persistence.SideRequester
	default:
		return nil, invalid("unknown friendship side %q", side)
	}
	rows, err := g.storage.ListFriendships(ctx, q, rowSide)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.Friendship, len(rows))
	for i, row := range rows {
		out[i] = gateway.Friendship{
			UserID:    row.UserID,
			FriendID:  row.FriendID,
			Status:    row.Status,
			Profile:   profileFromRow(row.Profile),
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}

// CreateFriendship inserts a friendship row; status defaults to pending.
func (g *Gateway) CreateFriendship(ctx context.Context, friendship gateway.Friendship) error {
	if friendship.UserID == friendship.FriendID {
		return invalid("cannot befriend yourself")
	}
	return mapError(g.storage.CreateFriendship(ctx, persistence.Friendship{
		UserID:   friendship.UserID,
		FriendID: friendship.FriendID,
		Status:   friendship.Status,
	}))
}

// UpdateFriendship changes the status of the (user, friend) row.
func (g *Gateway) UpdateFriendship(ctx context.Context, userID, friendID, status string) error {
	if status != gateway.FriendshipPending && status != gateway.FriendshipAccepted {
		return invalid("unknown friendship status %q", status)
	}
	return mapError(g.storage.UpdateFriendshipStatus(ctx, userID, friendID, status))
}

// DeleteFriendship removes the (user, friend) row.
func (g *Gateway) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	return mapError(g.storage.DeleteFriendship(ctx, userID, friendID))
}

// ListBreakoutRooms returns the breakout rooms of an event.
func (g *Gateway) ListBreakoutRooms(ctx context.Context, eventID string, q query.Query) ([]gateway.BreakoutRoom, error) {
	rows, err := g.storage.ListBreakoutRooms(ctx, q.Eq("event_id", eventID))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.BreakoutRoom, len(rows))
	for i, row := range rows {
		out[i] = gateway.BreakoutRoom(row)
	}
	return out, nil
}

// GetSettings returns the stored settings document of a user.
func (g *Gateway) GetSettings(ctx context.Context, userID string) (gateway.UserSettings, error) {
	row, err := g.storage.GetSettings(ctx, userID)
	if err != nil {
		return gateway.UserSettings{}, mapError(err)
	}
	return gateway.UserSettings{UserID: row.UserID, Settings: json.RawMessage(row.Payload), UpdatedAt: row.UpdatedAt}, nil
}

// SaveSettings upserts a user's settings document.
func (g *Gateway) SaveSettings(ctx context.Context, settings gateway.UserSettings) error {
	if settings.UserID == "" {
		return invalid("user_id is required")
	}
	if !json.Valid(settings.Settings) {
		return invalid("settings must be a JSON document")
	}
	return mapError(g.storage.UpsertSettings(ctx, persistence.UserSettings{
		UserID:  settings.UserID,
		Payload: []byte(settings.Settings),
	}))
}

func eventFromRow(row persistence.Event) gateway.Event {
	return gateway.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		Location:    row.Location,
		ImageURL:    row.ImageURL,
		Category:    row.Category,
		Price:       row.Price,
		Capacity:    row.Capacity,
		OrganizerID: row.OrganizerID,
		IsVirtual:   row.IsVirtual,
		StreamURL:   row.StreamURL,
		Status:      row.Status,
		Tags:        nonNil(row.Tags),
		Attendees:   nonNil(row.Attendees),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func eventToRow(event gateway.Event) persistence.Event {
	return persistence.Event{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		Location:    event.Location,
		ImageURL:    event.ImageURL,
		Category:    event.Category,
		Price:       event.Price,
		Capacity:    event.Capacity,
		OrganizerID: event.OrganizerID,
		IsVirtual:   event.IsVirtual,
		StreamURL:   event.StreamURL,
		Status:      event.Status,
		Tags:        nonNil(event.Tags),
		Attendees:   nonNil(event.Attendees),
	}
}

func ticketFromRow(row persistence.Ticket) gateway.Ticket {
	return gateway.Ticket{
		ID:            row.ID,
		EventID:       row.EventID,
		UserID:        row.UserID,
		TicketType:    row.TicketType,
		Price:         row.Price,
		PaymentID:     row.PaymentID,
		PaymentStatus: row.PaymentStatus,
		QRCode:        row.QRCode,
		IsUsed:        row.IsUsed,
		CreatedAt:     row.CreatedAt,
	}
}

func ratingFromRow(row persistence.Rating) gateway.Rating {
	return gateway.Rating{
		EventID:      row.EventID,
		UserID:       row.UserID,
		Rating:       row.Rating,
		Comment:      row.Comment,
		ReviewerName: row.ReviewerName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func profileFromRow(row persistence.Profile) gateway.Profile {
	return gateway.Profile{
		ID:        row.ID,
		Username:  row.Username,
		FullName:  row.FullName,
		AvatarURL: row.AvatarURL,
		Website:   row.Website,
		LastSeen:  row.LastSeen,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
