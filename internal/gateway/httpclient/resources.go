package httpclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

func values(q query.Query) url.Values {
	return url.Values(q.Encode())
}

func eventPath(id string, rest ...string) string {
	path := "/events/" + url.PathEscape(id)
	for _, segment := range rest {
		path += "/" + segment
	}
	return path
}

func (c *Client) ListEvents(ctx context.Context, q query.Query) ([]gateway.Event, error) {
	var events []gateway.Event
	if err := c.do(ctx, http.MethodGet, "/events", values(q), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (gateway.Event, error) {
	var event gateway.Event
	err := c.do(ctx, http.MethodGet, eventPath(id), nil, nil, &event)
	return event, err
}

// CreateEvent creates the event as the signed-in user, who becomes its
// organizer.
func (c *Client) CreateEvent(ctx context.Context, event gateway.Event) (gateway.Event, error) {
	var created gateway.Event
	err := c.do(ctx, http.MethodPost, "/events", nil, event, &created)
	return created, err
}

func (c *Client) UpdateEvent(ctx context.Context, event gateway.Event) (gateway.Event, error) {
	var updated gateway.Event
	err := c.do(ctx, http.MethodPut, eventPath(event.ID), nil, event, &updated)
	return updated, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, eventPath(id), nil, nil, nil)
}

// CreateTicket buys a ticket for the signed-in user; ticket.UserID is
// replaced by the gateway.
func (c *Client) CreateTicket(ctx context.Context, ticket gateway.Ticket) (gateway.Ticket, error) {
	var created gateway.Ticket
	err := c.do(ctx, http.MethodPost, eventPath(ticket.EventID, "tickets"), nil, ticket, &created)
	return created, err
}

// ListTickets only ever returns the signed-in user's tickets.
func (c *Client) ListTickets(ctx context.Context, q query.Query) ([]gateway.Ticket, error) {
	var tickets []gateway.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets", values(q), nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) ListRatings(ctx context.Context, eventID string, q query.Query) ([]gateway.Rating, error) {
	var ratings []gateway.Rating
	if err := c.do(ctx, http.MethodGet, eventPath(eventID, "ratings"), values(q), nil, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *Client) UpsertRating(ctx context.Context, rating gateway.Rating) (gateway.Rating, error) {
	var stored gateway.Rating
	err := c.do(ctx, http.MethodPut, eventPath(rating.EventID, "ratings"), nil, rating, &stored)
	return stored, err
}

func (c *Client) CallScalar(ctx context.Context, name string, args map[string]string) (*float64, error) {
	params := url.Values{}
	for key, value := range args {
		params.Set(key, value)
	}
	var out struct {
		Result *float64 `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/rpc/"+url.PathEscape(name), params, nil, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) ListProfiles(ctx context.Context, q query.Query) ([]gateway.Profile, error) {
	var profiles []gateway.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles", values(q), nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) ListFriendships(ctx context.Context, q query.Query, side gateway.Side) ([]gateway.Friendship, error) {
	params := values(q)
	if side != "" {
		params.Set("side", string(side))
	}
	var friendships []gateway.Friendship
	if err := c.do(ctx, http.MethodGet, "/friendships", params, nil, &friendships); err != nil {
		return nil, err
	}
	return friendships, nil
}

func (c *Client) CreateFriendship(ctx context.Context, friendship gateway.Friendship) error {
	return c.do(ctx, http.MethodPost, "/friendships", nil, friendship, nil)
}

func (c *Client) UpdateFriendship(ctx context.Context, userID, friendID, status string) error {
	body := map[string]string{"user_id": userID, "friend_id": friendID, "status": status}
	return c.do(ctx, http.MethodPatch, "/friendships", nil, body, nil)
}

func (c *Client) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	params := url.Values{"user_id": {userID}, "friend_id": {friendID}}
	return c.do(ctx, http.MethodDelete, "/friendships", params, nil, nil)
}

func (c *Client) ListBreakoutRooms(ctx context.Context, eventID string, q query.Query) ([]gateway.BreakoutRoom, error) {
	var rooms []gateway.BreakoutRoom
	if err := c.do(ctx, http.MethodGet, eventPath(eventID, "breakout-rooms"), values(q), nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetSettings returns the signed-in user's settings; the gateway only serves
// the caller's own document, so userID is informational.
func (c *Client) GetSettings(ctx context.Context, userID string) (gateway.UserSettings, error) {
	var settings gateway.UserSettings
	err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &settings)
	return settings, err
}

func (c *Client) SaveSettings(ctx context.Context, settings gateway.UserSettings) error {
	return c.do(ctx, http.MethodPut, "/settings", nil, settings, nil)
}
