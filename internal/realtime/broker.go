// Package realtime fans published payloads out to channel subscribers, either
// inside one process (MemoryBroker) or across processes through NATS
// (NATSBroker).
package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when publishing to or subscribing on a closed broker.
var ErrClosed = errors.New("realtime: broker closed")

// Handler receives one published payload.
type Handler func(payload []byte)

// Subscription is a live registration on a channel.
type Subscription interface {
	// Close cancels the subscription. Once Close returns no handler call is
	// in progress and none will start. Close is safe to call more than once
	// but must not be called from inside the handler.
	Close() error
}

// Broker delivers payloads published on a channel to its subscribers.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(channel string, handler Handler) (Subscription, error)
	Close() error
}

// guard serialises deliveries for one subscription and stops them at close.
type guard struct {
	mu      sync.Mutex
	closed  bool
	handler Handler
}

func (g *guard) deliver(payload []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.handler(payload)
}

// shut marks the guard closed and reports whether this call closed it.
func (g *guard) shut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.closed = true
	return true
}
