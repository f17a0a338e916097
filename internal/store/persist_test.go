package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/store"
	"github.com/example/eventhub/internal/testfixtures"
)

type failingStateRepo struct {
	loadErr error
	saveErr error
	payload []byte
}

func (r *failingStateRepo) LoadState(context.Context, string) ([]byte, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.payload, nil
}

func (r *failingStateRepo) SaveState(context.Context, string, []byte) error {
	return r.saveErr
}

func TestPersistRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("notification")
	opts := []store.Option{store.WithClock(clock.NowFunc()), store.WithIDGenerator(ids.NextFunc())}

	fresh, err := store.Rehydrate(ctx, harness.Store, "event-storage", opts...)
	if err != nil {
		t.Fatalf("Rehydrate on an empty slot failed: %v", err)
	}
	if fresh.Version() != 0 || len(fresh.Snapshot().Events) != 0 {
		t.Fatalf("expected an empty store")
	}

	fresh.Subscribe(store.Persist(ctx, harness.Store, "event-storage", nil))
	account := testfixtures.NewAccountFixture()
	user := account.User()
	fresh.SetUser(&user)
	fresh.AddEvent(testfixtures.NewEventFixture(testfixtures.WithEventTitle("Trail Run")).Store())
	fresh.ToggleDarkMode()
	fresh.SetSelectedDate("2025-01-10T00:00:00.000Z")

	raw, err := harness.Store.LoadState(ctx, "event-storage")
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("persisted payload is not JSON: %v", err)
	}
	var state map[string]json.RawMessage
	if err := json.Unmarshal(envelope["state"], &state); err != nil {
		t.Fatalf("missing state object: %v", err)
	}
	for _, key := range []string{"user", "events", "notifications", "darkMode", "selectedDate"} {
		if _, ok := state[key]; !ok {
			t.Fatalf("persisted state lacks %q: %s", key, envelope["state"])
		}
	}

	restored, err := store.Rehydrate(ctx, harness.Store, "event-storage", opts...)
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), fresh.Snapshot()) {
		t.Fatalf("rehydrated state differs:\n got %+v\nwant %+v", restored.Snapshot(), fresh.Snapshot())
	}
}

func TestPersistFailures(t *testing.T) {
	t.Parallel()

	t.Run("write errors are logged and the store keeps working", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		repo := &failingStateRepo{saveErr: errors.New("disk full")}

		s := store.New()
		s.Subscribe(store.Persist(context.Background(), repo, "event-storage", logger))
		s.ToggleDarkMode()

		if !s.Snapshot().DarkMode {
			t.Fatalf("mutation must apply even when persistence fails")
		}
		if !strings.Contains(buf.String(), "failed to persist state") || !strings.Contains(buf.String(), "disk full") {
			t.Fatalf("expected failure to be logged, got %s", buf.String())
		}
	})

	t.Run("corrupt records are reported", func(t *testing.T) {
		t.Parallel()
		repo := &failingStateRepo{payload: []byte("{not json")}

		if _, err := store.Rehydrate(context.Background(), repo, "event-storage"); !errors.Is(err, store.ErrCorruptState) {
			t.Fatalf("expected ErrCorruptState, got %v", err)
		}
	})

	t.Run("load errors other than not found are returned", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		if _, err := store.Rehydrate(context.Background(), &failingStateRepo{loadErr: boom}, "slot"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped load error, got %v", err)
		}
		if _, err := store.Rehydrate(context.Background(), &failingStateRepo{loadErr: persistence.ErrNotFound}, "slot"); err != nil {
			t.Fatalf("not found must start fresh, got %v", err)
		}
	})
}
