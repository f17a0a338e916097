package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

// ChatBackend is the part of the gateway a chat room needs.
type ChatBackend interface {
	gateway.Chat
	gateway.BreakoutRooms
}

// ChatRoom is an open virtual event room: its message history, live
// messages and breakout rooms.
type ChatRoom struct {
	backend   ChatBackend
	eventID   string
	session   SessionSource
	onMessage func(gateway.ChatMessage)
	logger    *slog.Logger

	mu       sync.Mutex
	messages []gateway.ChatMessage
	rooms    []gateway.BreakoutRoom

	sub       gateway.Subscription
	closeOnce sync.Once
	closeErr  error
}

// OpenChatRoom subscribes to the event's chat before loading the history, so
// no message sent in between is lost. Live messages are appended in arrival
// order without deduplication. onMessage, when set, is called for every live
// message after it is appended.
func OpenChatRoom(ctx context.Context, backend ChatBackend, eventID string, session SessionSource, onMessage func(gateway.ChatMessage), logger *slog.Logger) (*ChatRoom, error) {
	if backend == nil {
		return nil, fmt.Errorf("chat backend not configured")
	}
	room := &ChatRoom{
		backend:   backend,
		eventID:   eventID,
		session:   session,
		onMessage: onMessage,
		logger:    serviceLogger(ctx, defaultLogger(logger), "ChatRoom", "", "event_id", eventID),
	}

	var live []gateway.ChatMessage
	loaded := false
	sub, err := backend.Subscribe(ctx, eventID, func(message gateway.ChatMessage) {
		room.mu.Lock()
		if loaded {
			room.messages = append(room.messages, message)
		} else {
			live = append(live, message)
		}
		room.mu.Unlock()
		if room.onMessage != nil {
			room.onMessage(message)
		}
	})
	if err != nil {
		room.logger.ErrorContext(ctx, "failed to subscribe to chat", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	room.sub = sub

	history, err := backend.ListMessages(ctx, eventID, query.New().Order("created_at", false))
	if err != nil {
		_ = sub.Close()
		room.logger.ErrorContext(ctx, "failed to load chat history", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	rooms, err := backend.ListBreakoutRooms(ctx, eventID, query.New().Order("name", false))
	if err != nil {
		_ = sub.Close()
		room.logger.ErrorContext(ctx, "failed to load breakout rooms", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	room.mu.Lock()
	room.messages = append(history, live...)
	room.rooms = rooms
	loaded = true
	room.mu.Unlock()

	room.logger.InfoContext(ctx, "chat room opened", "history", len(history))
	return room, nil
}

// EventID returns the event the room belongs to.
func (r *ChatRoom) EventID() string {
	return r.eventID
}

// Messages returns a copy of the messages seen so far.
func (r *ChatRoom) Messages() []gateway.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]gateway.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// BreakoutRooms returns a copy of the event's breakout rooms.
func (r *ChatRoom) BreakoutRooms() []gateway.BreakoutRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]gateway.BreakoutRoom, len(r.rooms))
	copy(out, r.rooms)
	return out
}

// Send posts text as the current user. Blank text, or no signed-in user, is
// ignored and reports false.
func (r *ChatRoom) Send(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	userID := r.session.userID()
	if text == "" || userID == "" {
		return false, nil
	}
	if _, err := r.backend.SendMessage(ctx, gateway.ChatMessage{EventID: r.eventID, UserID: userID, Message: text}); err != nil {
		r.logger.ErrorContext(ctx, "failed to send chat message", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	return true, nil
}

// Close releases the subscription. It is safe to call more than once.
func (r *ChatRoom) Close() error {
	r.closeOnce.Do(func() {
		if r.sub != nil {
			r.closeErr = r.sub.Close()
		}
	})
	return r.closeErr
}
