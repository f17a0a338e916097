package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/testfixtures"
)

func TestRatingService(t *testing.T) {
	t.Parallel()
	h := testfixtures.NewGatewayHarness(t)
	ctx := context.Background()
	ada := newClient(t, h, "ada@example.com")
	bob := newClient(t, h, "bob@example.com")

	if err := h.Store.UpsertProfile(ctx, persistence.Profile{ID: bob.user.ID, Username: "bob", FullName: "Bob Builder", LastSeen: h.Clock.Now()}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	fixture := testfixtures.NewEventFixture(testfixtures.WithEventOrganizer(ada.user.ID))
	if err := h.Store.CreateEvent(ctx, fixture.Persistence()); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	adaRatings := NewRatingService(h.Gateway, ada.session, h.Clock.NowFunc(), time.Minute)
	bobRatings := NewRatingService(h.Gateway, bob.session, h.Clock.NowFunc(), time.Minute)

	empty, err := adaRatings.Load(ctx, fixture.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if empty.Average != nil || empty.UserRating != nil || len(empty.Reviews) != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}

	if _, err := adaRatings.Submit(ctx, fixture.ID, 6, ""); err == nil {
		t.Fatalf("expected validation error for out of range rating")
	}
	var vErr *ValidationError
	if _, err := adaRatings.Submit(ctx, fixture.ID, 0, ""); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	summary, err := adaRatings.Submit(ctx, fixture.ID, 3, "  decent  ")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if summary.UserRating == nil || *summary.UserRating != 3 || summary.Reviews[0].ReviewerName != AnonymousReviewer || summary.Reviews[0].Comment != "decent" {
		t.Fatalf("unexpected summary after first rating: %+v", summary)
	}

	h.Clock.Advance(time.Minute)
	summary, err = bobRatings.Submit(ctx, fixture.ID, 5, "great")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if summary.Average == nil || *summary.Average != 4 {
		t.Fatalf("expected average 4, got %+v", summary.Average)
	}
	if len(summary.Reviews) != 2 || summary.Reviews[0].ReviewerName != "Bob Builder" {
		t.Fatalf("expected newest review first, got %+v", summary.Reviews)
	}

	h.Clock.Advance(time.Minute)
	summary, err = adaRatings.Submit(ctx, fixture.ID, 1, "changed my mind")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(summary.Reviews) != 2 || *summary.UserRating != 1 || *summary.Average != 3 {
		t.Fatalf("expected rating to be replaced, got %+v", summary)
	}

	cached, err := bobRatings.Load(ctx, fixture.ID)
	if err != nil || *cached.Average != 4 {
		t.Fatalf("expected bob's summary to be served from cache, got %+v (%v)", cached, err)
	}
	h.Clock.Advance(2 * time.Minute)
	fresh, err := bobRatings.Load(ctx, fixture.ID)
	if err != nil || *fresh.Average != 3 {
		t.Fatalf("expected expired summary to be reloaded, got %+v (%v)", fresh, err)
	}

	if _, err := NewRatingService(h.Gateway, nil, nil, 0).Submit(ctx, fixture.ID, 4, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
