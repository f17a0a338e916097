package selectors

import (
	"testing"
	"time"

	"github.com/example/eventhub/internal/store"
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func eventAt(id, start string, price float64, attendees ...string) store.Event {
	return store.Event{ID: id, Date: at(start), Price: price, Attendees: attendees}
}

func ids(events []store.Event) []string {
	out := make([]string, 0, len(events))
	for _, event := range events {
		out = append(out, event.ID)
	}
	return out
}

func TestEventsOnDate(t *testing.T) {
	t.Parallel()

	events := []store.Event{
		eventAt("morning", "2025-01-10T09:00", 0),
		eventAt("late", "2025-01-10T23:00", 0),
		eventAt("next-day", "2025-01-11T00:00", 0),
		eventAt("day-before", "2025-01-09T23:59", 0),
	}

	got := ids(EventsOnDate(events, at("2025-01-10T00:00")))
	if len(got) != 2 || got[0] != "morning" || got[1] != "late" {
		t.Fatalf("unexpected events on date: %v", got)
	}

	t.Run("compares days in the requested location", func(t *testing.T) {
		t.Parallel()
		tokyo := time.FixedZone("JST", 9*60*60)
		// 2025-01-10T23:00Z is 2025-01-11 08:00 in Tokyo.
		got := ids(EventsOnDate(events, time.Date(2025, time.January, 11, 0, 0, 0, 0, tokyo)))
		if len(got) != 2 || got[0] != "late" || got[1] != "next-day" {
			t.Fatalf("unexpected events for Tokyo day: %v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		if got := EventsOnDate(nil, at("2025-01-10T00:00")); got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})
}

func TestPartition(t *testing.T) {
	t.Parallel()

	now := at("2025-01-10T12:00")
	events := []store.Event{
		eventAt("past", "2025-01-10T11:59", 0),
		eventAt("now", "2025-01-10T12:00", 0),
		eventAt("future", "2025-01-10T12:01", 0),
	}

	upcoming, past := Partition(events, now)
	if got := ids(upcoming); len(got) != 1 || got[0] != "future" {
		t.Fatalf("unexpected upcoming: %v", got)
	}
	if got := ids(past); len(got) != 2 || got[0] != "past" || got[1] != "now" {
		t.Fatalf("an event starting exactly now must be past: %v", got)
	}
}

func TestComputeMetrics(t *testing.T) {
	t.Parallel()

	now := at("2025-01-10T12:00")

	tests := []struct {
		name   string
		events []store.Event
		want   Metrics
	}{
		{
			name:   "empty collection has zero average",
			events: nil,
			want:   Metrics{},
		},
		{
			name: "sums prices and averages attendees",
			events: []store.Event{
				eventAt("a", "2025-01-11T09:00", 25, "u1", "u2", "u3"),
				eventAt("b", "2025-01-09T09:00", 10.5),
				eventAt("c", "2025-01-12T09:00", 0, "u1", "u2"),
				eventAt("d", "2025-01-10T12:00", 4.5, "u4"),
			},
			want: Metrics{Total: 4, Upcoming: 2, Revenue: 40, AverageAttendees: 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComputeMetrics(tt.events, now); got != tt.want {
				t.Fatalf("ComputeMetrics() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsOnline(t *testing.T) {
	t.Parallel()

	now := at("2025-01-10T12:00")
	tests := []struct {
		name     string
		lastSeen time.Time
		want     bool
	}{
		{name: "four minutes ago", lastSeen: now.Add(-4 * time.Minute), want: true},
		{name: "six minutes ago", lastSeen: now.Add(-6 * time.Minute), want: false},
		{name: "exactly five minutes ago", lastSeen: now.Add(-5 * time.Minute), want: false},
		{name: "never seen", lastSeen: time.Time{}, want: false},
	}
	for _, tt := range tests {
		if got := IsOnline(tt.lastSeen, now); got != tt.want {
			t.Errorf("%s: IsOnline = %v, want %v", tt.name, got, tt.want)
		}
	}

	lastSeen := now.Add(-4 * time.Minute)
	if !IsOnline(lastSeen, now) || IsOnline(lastSeen, now.Add(2*time.Minute)) {
		t.Fatalf("status must be recomputed against the supplied now")
	}
}

func TestUnreadCountAndSelectedDay(t *testing.T) {
	t.Parallel()

	notifications := []store.Notification{{ID: "1"}, {ID: "2", Read: true}, {ID: "3"}}
	if got := UnreadCount(notifications); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}

	now := at("2025-01-10T12:00")
	cases := map[string]time.Time{
		"2025-01-11T08:30:00.000Z": at("2025-01-11T08:30"),
		"2025-02-01":               at("2025-02-01T00:00"),
		"garbage":                  now,
	}
	for selected, want := range cases {
		if got := SelectedDay(store.Snapshot{SelectedDate: selected}, now); !got.Equal(want) {
			t.Errorf("SelectedDay(%q) = %v, want %v", selected, got, want)
		}
	}
}
