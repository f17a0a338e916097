package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/eventhub/internal/gateway"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	outboxSize   = 64
)

var (
	messageFields = []string{"id", "user_id", "created_at"}
	roomFields    = []string{"id", "name"}
)

type chatBackend interface {
	gateway.Chat
	gateway.BreakoutRooms
	GetEvent(ctx context.Context, id string) (gateway.Event, error)
}

// roomHub tracks open WebSocket connections per event so they can be closed
// together on shutdown.
type roomHub struct {
	mu     sync.Mutex
	closed bool
	conns  map[string]map[*websocket.Conn]bool
}

func (h *roomHub) register(eventID string, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.conns[eventID] == nil {
		h.conns[eventID] = make(map[*websocket.Conn]bool)
	}
	h.conns[eventID][conn] = true
	return true
}

func (h *roomHub) unregister(eventID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[eventID] != nil {
		delete(h.conns[eventID], conn)
		if len(h.conns[eventID]) == 0 {
			delete(h.conns, eventID)
		}
	}
}

func (h *roomHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, conns := range h.conns {
		for conn := range conns {
			_ = conn.Close()
		}
	}
}

func (h *roomHub) count(eventID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[eventID])
}

// ChatHandler serves event room messages, breakout rooms and the live chat
// WebSocket.
type ChatHandler struct {
	backend   chatBackend
	upgrader  websocket.Upgrader
	hub       *roomHub
	responder responder
	logger    *slog.Logger
}

// NewChatHandler constructs a ChatHandler. Authentication happens on the
// token, so any browser origin may open the socket.
func NewChatHandler(backend chatBackend, logger *slog.Logger) *ChatHandler {
	base := defaultLogger(logger)
	return &ChatHandler{
		backend: backend,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		hub:       &roomHub{conns: make(map[string]map[*websocket.Conn]bool)},
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *ChatHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ChatHandler", operation, attrs...)
}

// Close disconnects every live chat socket.
func (h *ChatHandler) Close() {
	h.hub.closeAll()
}

// ListMessages handles GET /events/{id}/messages.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(h.responder, w, r, messageFields)
	if !ok {
		return
	}
	messages, err := h.backend.ListMessages(r.Context(), r.PathValue("id"), q)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messages)
}

// SendMessage handles POST /events/{id}/messages as the caller.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var message gateway.ChatMessage
	if err := decodeJSON(w, r, &message); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	message.EventID = r.PathValue("id")
	message.UserID = principal.ID

	stored, err := h.backend.SendMessage(ctx, message)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, stored)
}

// ListBreakoutRooms handles GET /events/{id}/breakout-rooms.
func (h *ChatHandler) ListBreakoutRooms(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(h.responder, w, r, roomFields)
	if !ok {
		return
	}
	rooms, err := h.backend.ListBreakoutRooms(r.Context(), r.PathValue("id"), q)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rooms)
}

// Subscribe handles GET /events/{id}/messages/subscribe. The broker
// subscription is registered before the upgrade completes, so every message
// inserted after the client's handshake returns is delivered.
func (h *ChatHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := r.PathValue("id")
	logger := h.log(ctx, "Subscribe", "event_id", eventID)

	if _, err := h.backend.GetEvent(ctx, eventID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	outbox := make(chan gateway.ChatMessage, outboxSize)
	sub, err := h.backend.Subscribe(ctx, eventID, func(message gateway.ChatMessage) {
		select {
		case outbox <- message:
		default:
			logger.Warn("dropping chat message for slow subscriber", "message_id", message.ID)
		}
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if !h.hub.register(eventID, conn) {
		return
	}
	defer h.hub.unregister(eventID, conn)
	logger.DebugContext(ctx, "chat subscriber connected")

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.DebugContext(ctx, "chat subscriber disconnected")
			return
		case message := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(message); err != nil {
				logger.DebugContext(ctx, "failed to write chat message", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
