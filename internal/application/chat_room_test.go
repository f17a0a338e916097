package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
	"github.com/example/eventhub/internal/testfixtures"
)

func TestChatRoom(t *testing.T) {
	t.Parallel()
	h := testfixtures.NewGatewayHarness(t)
	ctx := context.Background()
	ada := newClient(t, h, "ada@example.com")

	fixture := testfixtures.NewEventFixture(testfixtures.WithVirtualStream("https://stream.example.com/live"))
	if err := h.Store.CreateEvent(ctx, fixture.Persistence()); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := h.Store.CreateBreakoutRoom(ctx, persistence.BreakoutRoom{ID: "room-b", EventID: fixture.ID, Name: "Q&A", Capacity: 20}); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if err := h.Store.CreateBreakoutRoom(ctx, persistence.BreakoutRoom{ID: "room-a", EventID: fixture.ID, Name: "Lobby", Capacity: 50}); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if _, err := h.Gateway.SendMessage(ctx, gateway.ChatMessage{EventID: fixture.ID, UserID: ada.user.ID, Message: "earlier"}); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	h.Clock.Advance(time.Second)

	delivered := make(chan gateway.ChatMessage, 4)
	room, err := OpenChatRoom(ctx, h.Gateway, fixture.ID, ada.session, func(message gateway.ChatMessage) {
		delivered <- message
	}, nil)
	if err != nil {
		t.Fatalf("OpenChatRoom failed: %v", err)
	}

	if history := room.Messages(); len(history) != 1 || history[0].Message != "earlier" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if rooms := room.BreakoutRooms(); len(rooms) != 2 || rooms[0].Name != "Lobby" {
		t.Fatalf("expected rooms ordered by name, got %+v", rooms)
	}

	sent, err := room.Send(ctx, "  hello everyone ")
	if err != nil || !sent {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case message := <-delivered:
		if message.Message != "hello everyone" {
			t.Fatalf("unexpected live message: %+v", message)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
	messages := room.Messages()
	if len(messages) != 2 || messages[1].Message != "hello everyone" {
		t.Fatalf("expected live message appended, got %+v", messages)
	}

	messages[0].Message = "mutated"
	if room.Messages()[0].Message != "earlier" {
		t.Fatalf("Messages must return a copy")
	}

	if sent, err := room.Send(ctx, "   "); sent || err != nil {
		t.Fatalf("expected blank message to be ignored, got %v %v", sent, err)
	}
	anonymous, err := OpenChatRoom(ctx, h.Gateway, fixture.ID, nil, nil, nil)
	if err != nil {
		t.Fatalf("OpenChatRoom failed: %v", err)
	}
	if sent, err := anonymous.Send(ctx, "hi"); sent || err != nil {
		t.Fatalf("expected send without a user to be ignored, got %v %v", sent, err)
	}
	_ = anonymous.Close()

	if err := room.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := room.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if h.Broker.Subscribers(gateway.ChatChannel(fixture.ID)) != 0 {
		t.Fatalf("expected every subscription to be released")
	}

	if _, err := h.Gateway.SendMessage(ctx, gateway.ChatMessage{EventID: fixture.ID, UserID: ada.user.ID, Message: "after close"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(room.Messages()) != 2 || len(delivered) != 0 {
		t.Fatalf("expected no delivery after close")
	}
}

// racingChat delivers a message while the history is being loaded and also
// returns it in the history.
type racingChat struct {
	gateway.Chat
	gateway.BreakoutRooms
	handler  func(gateway.ChatMessage)
	roomsErr error
	closed   bool
}

func (r *racingChat) Subscribe(_ context.Context, _ string, handler func(gateway.ChatMessage)) (gateway.Subscription, error) {
	r.handler = handler
	return r, nil
}

func (r *racingChat) ListMessages(context.Context, string, query.Query) ([]gateway.ChatMessage, error) {
	message := gateway.ChatMessage{ID: "m-1", Message: "in flight"}
	r.handler(message)
	return []gateway.ChatMessage{message}, nil
}

func (r *racingChat) ListBreakoutRooms(context.Context, string, query.Query) ([]gateway.BreakoutRoom, error) {
	return nil, r.roomsErr
}

func (r *racingChat) Close() error {
	r.closed = true
	return nil
}

func TestOpenChatRoom_KeepsMessagesDeliveredDuringLoad(t *testing.T) {
	t.Parallel()

	room, err := OpenChatRoom(context.Background(), &racingChat{}, "event-1", nil, nil, nil)
	if err != nil {
		t.Fatalf("OpenChatRoom failed: %v", err)
	}
	messages := room.Messages()
	if len(messages) != 2 || messages[0].ID != "m-1" || messages[1].ID != "m-1" {
		t.Fatalf("expected history followed by the live copy, got %+v", messages)
	}
}

func TestOpenChatRoom_Failures(t *testing.T) {
	t.Parallel()

	backend := &racingChat{roomsErr: errors.New("rooms unavailable")}
	if _, err := OpenChatRoom(context.Background(), backend, "event-1", nil, nil, nil); err == nil {
		t.Fatalf("expected breakout room failure to be returned")
	}
	if !backend.closed {
		t.Fatalf("expected subscription to be released on failure")
	}
}
