package local

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

// ListMessages returns the messages of an event room.
func (g *Gateway) ListMessages(ctx context.Context, eventID string, q query.Query) ([]gateway.ChatMessage, error) {
	rows, err := g.storage.ListMessages(ctx, q.Eq("event_id", eventID))
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]gateway.ChatMessage, len(rows))
	for i, row := range rows {
		out[i] = gateway.ChatMessage(row)
	}
	return out, nil
}

// SendMessage stores the message and publishes it on the event's channel.
// A publish failure is logged; the stored message is still returned.
func (g *Gateway) SendMessage(ctx context.Context, message gateway.ChatMessage) (gateway.ChatMessage, error) {
	message.Message = strings.TrimSpace(message.Message)
	if message.Message == "" {
		return gateway.ChatMessage{}, invalid("message must not be empty")
	}
	message.ID = g.newID()
	message.CreatedAt = g.now().UTC()

	if err := g.storage.InsertMessage(ctx, persistence.ChatMessage(message)); err != nil {
		return gateway.ChatMessage{}, mapError(err)
	}

	if err := g.publish(ctx, message); err != nil {
		g.log(ctx, "SendMessage", "event_id", message.EventID).ErrorContext(ctx, "failed to publish chat message", "error", err)
	}
	return message, nil
}

func (g *Gateway) publish(ctx context.Context, message gateway.ChatMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return g.broker.Publish(ctx, gateway.ChatChannel(message.EventID), payload)
}

// Subscribe registers handler for messages inserted into the event's room.
func (g *Gateway) Subscribe(ctx context.Context, eventID string, handler func(gateway.ChatMessage)) (gateway.Subscription, error) {
	if handler == nil {
		return nil, invalid("handler is required")
	}
	logger := g.log(ctx, "Subscribe", "event_id", eventID)
	sub, err := g.broker.Subscribe(gateway.ChatChannel(eventID), func(payload []byte) {
		var message gateway.ChatMessage
		if err := json.Unmarshal(payload, &message); err != nil {
			logger.Warn("dropping malformed chat payload", "error", err)
			return
		}
		handler(message)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
