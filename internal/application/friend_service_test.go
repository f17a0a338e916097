package application

import (
	"context"
	"testing"
	"time"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/testfixtures"
)

func TestFriendService(t *testing.T) {
	t.Parallel()
	h := testfixtures.NewGatewayHarness(t)
	ctx := context.Background()
	ada := newClient(t, h, "ada@example.com")
	bob := newClient(t, h, "bob@example.com")
	eve := newClient(t, h, "eve@example.com")

	now := h.Clock.Now()
	for _, p := range []persistence.Profile{
		{ID: ada.user.ID, Username: "ada", FullName: "Ada Lovelace", LastSeen: now},
		{ID: bob.user.ID, Username: "bob", FullName: "Bob Lovelace", LastSeen: now.Add(-10 * time.Minute)},
		{ID: eve.user.ID, Username: "eve", FullName: "Eve Online", LastSeen: now},
	} {
		if err := h.Store.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}

	adaFriends := NewFriendService(h.Gateway, ada.session)
	bobFriends := NewFriendService(h.Gateway, bob.session)

	t.Run("search excludes self and ignores blank text", func(t *testing.T) {
		found, err := adaFriends.Search(ctx, "LOVELACE")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(found) != 1 || found[0].ID != bob.user.ID {
			t.Fatalf("expected only bob, got %+v", found)
		}
		none, err := adaFriends.Search(ctx, "   ")
		if err != nil || none != nil {
			t.Fatalf("expected no results for blank search, got %+v (%v)", none, err)
		}
	})

	if err := adaFriends.SendRequest(ctx, bob.user.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := NewFriendService(h.Gateway, eve.session).SendRequest(ctx, bob.user.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	requests, err := bobFriends.Requests(ctx)
	if err != nil {
		t.Fatalf("Requests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected two pending requests, got %+v", requests)
	}

	if err := bobFriends.Respond(ctx, ada.user.ID, true); err != nil {
		t.Fatalf("accepting failed: %v", err)
	}
	if err := bobFriends.Respond(ctx, eve.user.ID, false); err != nil {
		t.Fatalf("declining failed: %v", err)
	}

	requests, err = bobFriends.Requests(ctx)
	if err != nil || len(requests) != 0 {
		t.Fatalf("expected no pending requests, got %+v (%v)", requests, err)
	}

	bobList, err := bobFriends.Friends(ctx)
	if err != nil || len(bobList) != 1 || bobList[0].UserID != ada.user.ID || bobList[0].FullName != "Ada Lovelace" {
		t.Fatalf("unexpected friends for bob: %+v (%v)", bobList, err)
	}
	adaList, err := adaFriends.Friends(ctx)
	if err != nil || len(adaList) != 1 || adaList[0].UserID != bob.user.ID {
		t.Fatalf("unexpected friends for ada: %+v (%v)", adaList, err)
	}

	if online := FilterFriends(adaList, FilterOnline, now); len(online) != 0 {
		t.Fatalf("bob was last seen 10 minutes ago, got %+v", online)
	}
	if offline := FilterFriends(adaList, FilterOffline, now); len(offline) != 1 {
		t.Fatalf("expected bob offline, got %+v", offline)
	}
	if online := FilterFriends(bobList, FilterOnline, now.Add(4*time.Minute)); len(online) != 1 {
		t.Fatalf("expected ada online within five minutes, got %+v", online)
	}
	if all := FilterFriends(append(adaList, bobList...), FilterAll, now); len(all) != 2 {
		t.Fatalf("expected every friend for the all filter, got %+v", all)
	}
}
