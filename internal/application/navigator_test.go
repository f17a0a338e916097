package application

import "testing"

func TestNavigator_Resolve(t *testing.T) {
	t.Parallel()

	signedIn := false
	nav := NewNavigator(func() bool { return signedIn })

	cases := []struct {
		path     string
		signedIn bool
		want     string
	}{
		{"/auth", false, "/auth"},
		{"/", false, "/auth"},
		{"/calendar", false, "/auth"},
		{"/events/abc/room", false, "/auth"},
		{"/", true, "/"},
		{"/events/new", true, "/events/new"},
		{"/events/abc/edit", true, "/events/abc/edit"},
		{"/friends/", true, "/friends/"},
		{"/nowhere", true, "/"},
		{"/nowhere", false, "/auth"},
	}
	for _, tc := range cases {
		signedIn = tc.signedIn
		if got := nav.Resolve(tc.path); got != tc.want {
			t.Fatalf("Resolve(%q) signedIn=%v = %q, want %q", tc.path, tc.signedIn, got, tc.want)
		}
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	route, params, ok := Match(EventRoomPath("event-7"))
	if !ok || route.Pattern != RouteEventRoom || params["id"] != "event-7" {
		t.Fatalf("unexpected match %+v %v %v", route, params, ok)
	}
	route, _, ok = Match("/events/new")
	if !ok || route.Pattern != RouteNewEvent {
		t.Fatalf("expected the new event route, got %+v", route)
	}
	if _, params, ok = Match(EditEventPath("e1")); !ok || params["id"] != "e1" {
		t.Fatalf("unexpected edit match %v %v", params, ok)
	}
	if _, _, ok := Match("/events"); ok {
		t.Fatalf("expected no route for /events")
	}
}
