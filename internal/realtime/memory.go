package realtime

import (
	"context"
	"sync"
)

// MemoryBroker delivers payloads synchronously to subscribers in the same
// process, in subscription order.
type MemoryBroker struct {
	mu       sync.RWMutex
	closed   bool
	seq      uint64
	channels map[string]map[uint64]*memorySubscription
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{channels: make(map[string]map[uint64]*memorySubscription)}
}

type memorySubscription struct {
	guard
	broker  *MemoryBroker
	channel string
	id      uint64
}

// Publish hands payload to every current subscriber of channel.
func (b *MemoryBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	subscribers := make([]*memorySubscription, 0, len(b.channels[channel]))
	for _, sub := range b.channels[channel] {
		subscribers = append(subscribers, sub)
	}
	b.mu.RUnlock()

	sortSubscriptions(subscribers)
	for _, sub := range subscribers {
		sub.deliver(payload)
	}
	return nil
}

// Subscribe registers handler on channel.
func (b *MemoryBroker) Subscribe(channel string, handler Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.seq++
	sub := &memorySubscription{guard: guard{handler: handler}, broker: b, channel: channel, id: b.seq}
	if b.channels[channel] == nil {
		b.channels[channel] = make(map[uint64]*memorySubscription)
	}
	b.channels[channel][sub.id] = sub
	return sub, nil
}

// Subscribers returns the number of live subscriptions on channel.
func (b *MemoryBroker) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channel])
}

// Close cancels every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	b.closed = true
	var all []*memorySubscription
	for _, subs := range b.channels {
		for _, sub := range subs {
			all = append(all, sub)
		}
	}
	b.channels = make(map[string]map[uint64]*memorySubscription)
	b.mu.Unlock()

	for _, sub := range all {
		sub.shut()
	}
	return nil
}

func (s *memorySubscription) Close() error {
	if !s.shut() {
		return nil
	}
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	if subs := s.broker.channels[s.channel]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.broker.channels, s.channel)
		}
	}
	return nil
}

func sortSubscriptions(subs []*memorySubscription) {
	for i := 1; i < len(subs); i++ {
		for j := i; j > 0 && subs[j-1].id > subs[j].id; j-- {
			subs[j-1], subs[j] = subs[j], subs[j-1]
		}
	}
}
