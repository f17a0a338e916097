package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/eventhub/internal/settings"
	"github.com/example/eventhub/internal/testfixtures"
)

func TestSettingsService(t *testing.T) {
	t.Parallel()
	h := testfixtures.NewGatewayHarness(t)
	ctx := context.Background()
	ada := newClient(t, h, "ada@example.com")
	svc := NewSettingsService(h.Gateway, ada.session)

	loaded, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defaults := settings.Defaults()
	if loaded.ParticipantLimit != defaults.ParticipantLimit {
		t.Fatalf("expected defaults before the first save, got %+v", loaded)
	}

	updated, err := svc.Apply(ctx, "participantLimit", "250")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if updated.ParticipantLimit != "250" {
		t.Fatalf("unexpected participant limit %q", updated.ParticipantLimit)
	}

	reloaded, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.ParticipantLimit != "250" {
		t.Fatalf("expected saved value to round trip, got %q", reloaded.ParticipantLimit)
	}

	var vErr *ValidationError
	if _, err := svc.Apply(ctx, "noSuchField", "1"); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for unknown field, got %v", err)
	}

	if _, err := NewSettingsService(h.Gateway, nil).Load(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
