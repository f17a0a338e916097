package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// subjectPrefix namespaces every channel on the NATS server.
const subjectPrefix = "eventhub"

// NATSBroker relays channels over core NATS subjects so that every gateway
// process sees inserts made by the others.
type NATSBroker struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// DialNATS connects to the NATS server at url. The connection keeps retrying
// in the background when the server is unavailable.
func DialNATS(url string, logger *slog.Logger) (*NATSBroker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("eventhubd"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats reconnected", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSBroker{nc: nc, logger: logger}, nil
}

// Subject maps a channel such as "chat:<event-id>" to a NATS subject.
func Subject(channel string) string {
	replacer := strings.NewReplacer(":", ".", "*", "_", ">", "_", " ", "_")
	return subjectPrefix + "." + replacer.Replace(channel)
}

// Publish sends payload on the channel's subject.
func (b *NATSBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.nc.IsClosed() {
		return ErrClosed
	}
	if err := b.nc.Publish(Subject(channel), payload); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

type natsSubscription struct {
	guard
	sub *nats.Subscription
}

// Subscribe registers handler on the channel's subject. NATS invokes the
// handler sequentially for one subscription.
func (b *NATSBroker) Subscribe(channel string, handler Handler) (Subscription, error) {
	if b.nc.IsClosed() {
		return nil, ErrClosed
	}
	s := &natsSubscription{guard: guard{handler: handler}}
	sub, err := b.nc.Subscribe(Subject(channel), func(msg *nats.Msg) {
		s.deliver(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	s.sub = sub
	return s, nil
}

func (s *natsSubscription) Close() error {
	if !s.shut() {
		return nil
	}
	if err := s.sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed && err != nats.ErrBadSubscription {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (b *NATSBroker) Close() error {
	if b.nc.IsClosed() {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}
