package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryBroker_Publish(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber of the channel in order", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		defer broker.Close()

		var got []string
		for _, name := range []string{"first", "second"} {
			name := name
			if _, err := broker.Subscribe("chat:event-001", func(payload []byte) {
				got = append(got, name+":"+string(payload))
			}); err != nil {
				t.Fatalf("Subscribe returned error: %v", err)
			}
		}
		if _, err := broker.Subscribe("chat:event-002", func([]byte) {
			t.Fatalf("other channel must not receive the payload")
		}); err != nil {
			t.Fatalf("Subscribe returned error: %v", err)
		}

		if err := broker.Publish(context.Background(), "chat:event-001", []byte("hi")); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
		if len(got) != 2 || got[0] != "first:hi" || got[1] != "second:hi" {
			t.Fatalf("unexpected deliveries: %v", got)
		}
	})

	t.Run("publishing without subscribers succeeds", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		if err := broker.Publish(context.Background(), "chat:nobody", []byte("x")); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
	})

	t.Run("rejects a cancelled context", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := broker.Publish(ctx, "chat:event-001", nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("closed broker refuses work", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		_ = broker.Close()
		if err := broker.Publish(context.Background(), "chat:event-001", nil); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
		if _, err := broker.Subscribe("chat:event-001", func([]byte) {}); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}

func TestMemoryBroker_SubscriptionClose(t *testing.T) {
	t.Parallel()

	t.Run("no delivery after close and close is idempotent", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		var calls int32
		sub, err := broker.Subscribe("chat:event-001", func([]byte) { atomic.AddInt32(&calls, 1) })
		if err != nil {
			t.Fatalf("Subscribe returned error: %v", err)
		}
		if err := sub.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
		if err := sub.Close(); err != nil {
			t.Fatalf("second Close returned error: %v", err)
		}
		_ = broker.Publish(context.Background(), "chat:event-001", []byte("late"))
		if atomic.LoadInt32(&calls) != 0 {
			t.Fatalf("handler ran after close")
		}
		if n := broker.Subscribers("chat:event-001"); n != 0 {
			t.Fatalf("expected subscription removed, %d remain", n)
		}
	})

	t.Run("close waits for an in-flight delivery", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		entered := make(chan struct{})
		release := make(chan struct{})
		var finished atomic.Bool

		sub, err := broker.Subscribe("chat:event-001", func([]byte) {
			close(entered)
			<-release
			finished.Store(true)
		})
		if err != nil {
			t.Fatalf("Subscribe returned error: %v", err)
		}

		go func() { _ = broker.Publish(context.Background(), "chat:event-001", []byte("slow")) }()
		<-entered

		closed := make(chan struct{})
		go func() {
			_ = sub.Close()
			close(closed)
		}()

		select {
		case <-closed:
			t.Fatalf("Close returned while the handler was running")
		case <-time.After(20 * time.Millisecond):
		}
		close(release)
		<-closed
		if !finished.Load() {
			t.Fatalf("handler did not finish before Close returned")
		}
	})

	t.Run("concurrent publish and close never deliver after close returns", func(t *testing.T) {
		t.Parallel()
		broker := NewMemoryBroker()
		var afterClose atomic.Bool
		var closedFlag atomic.Bool

		sub, err := broker.Subscribe("chat:event-001", func([]byte) {
			if closedFlag.Load() {
				afterClose.Store(true)
			}
		})
		if err != nil {
			t.Fatalf("Subscribe returned error: %v", err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_ = broker.Publish(context.Background(), "chat:event-001", []byte("m"))
				}
			}()
		}
		_ = sub.Close()
		closedFlag.Store(true)
		wg.Wait()

		if afterClose.Load() {
			t.Fatalf("handler observed a delivery after Close returned")
		}
	})
}

func TestSubject(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"chat:event-001": "eventhub.chat.event-001",
		"chat:a*b>c d":   "eventhub.chat.a_b_c_d",
	}
	for channel, want := range cases {
		if got := Subject(channel); got != want {
			t.Fatalf("Subject(%q) = %q, want %q", channel, got, want)
		}
	}
}
