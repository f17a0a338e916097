package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/query"
)

func (c *Client) ListMessages(ctx context.Context, eventID string, q query.Query) ([]gateway.ChatMessage, error) {
	var messages []gateway.ChatMessage
	if err := c.do(ctx, http.MethodGet, eventPath(eventID, "messages"), values(q), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a message as the signed-in user.
func (c *Client) SendMessage(ctx context.Context, message gateway.ChatMessage) (gateway.ChatMessage, error) {
	var stored gateway.ChatMessage
	err := c.do(ctx, http.MethodPost, eventPath(message.EventID, "messages"), nil, message, &stored)
	return stored, err
}

// Subscribe opens the event's chat socket. The gateway registers the
// subscription before completing the handshake, so messages sent after
// Subscribe returns are delivered. The handler runs on the socket's reader
// goroutine and must not call Close.
func (c *Client) Subscribe(ctx context.Context, eventID string, handler func(gateway.ChatMessage)) (gateway.Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is required", gateway.ErrInvalidRequest)
	}

	target := c.socketURL(eventPath(eventID, "messages", "subscribe"))
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return nil, fmt.Errorf("httpclient: open chat socket: %w", err)
	}

	logger := c.log(ctx, "Subscribe", "event_id", eventID)
	sub := &socketSubscription{conn: conn, handler: handler, done: make(chan struct{})}
	go sub.read(func(err error) {
		logger.Debug("chat socket closed", "error", err)
	})
	return sub, nil
}

func (c *Client) socketURL(path string) string {
	u := *c.base
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = c.base.Path + path
	if token := c.Token(); token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String()
}

type socketSubscription struct {
	conn    *websocket.Conn
	handler func(gateway.ChatMessage)
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func (s *socketSubscription) read(onExit func(error)) {
	defer close(s.done)
	for {
		var message gateway.ChatMessage
		if err := s.conn.ReadJSON(&message); err != nil {
			if !s.isClosed() {
				onExit(err)
			}
			return
		}
		s.deliver(message)
	}
}

func (s *socketSubscription) deliver(message gateway.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handler(message)
}

func (s *socketSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops deliveries and waits for the reader to exit. It is safe to call
// more than once.
func (s *socketSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := s.conn.Close()
	<-s.done
	return err
}
