// Package selectors derives view data from store snapshots. Every function is
// pure and recomputed on each call; nothing is cached.
package selectors

import (
	"time"

	"github.com/example/eventhub/internal/store"
)

// OnlineWindow is how recently a user must have been seen to count as online.
const OnlineWindow = 5 * time.Minute

// EventsOnDate returns the events whose start falls on the same calendar day
// as day, compared in day's location.
func EventsOnDate(events []store.Event, day time.Time) []store.Event {
	y, m, d := day.Date()
	loc := day.Location()

	matched := make([]store.Event, 0)
	for _, event := range events {
		ey, em, ed := event.Date.In(loc).Date()
		if ey == y && em == m && ed == d {
			matched = append(matched, event)
		}
	}
	return matched
}

// Partition splits events into those starting strictly after now and the
// rest. An event starting exactly at now is past.
func Partition(events []store.Event, now time.Time) (upcoming, past []store.Event) {
	upcoming = make([]store.Event, 0)
	past = make([]store.Event, 0)
	for _, event := range events {
		if event.Date.After(now) {
			upcoming = append(upcoming, event)
		} else {
			past = append(past, event)
		}
	}
	return upcoming, past
}

// Metrics aggregates the dashboard figures.
type Metrics struct {
	Total            int
	Upcoming         int
	Revenue          float64
	AverageAttendees float64
}

// ComputeMetrics summarises events at now. AverageAttendees is 0 for an
// empty collection.
func ComputeMetrics(events []store.Event, now time.Time) Metrics {
	metrics := Metrics{Total: len(events)}
	attendees := 0
	for _, event := range events {
		if event.Date.After(now) {
			metrics.Upcoming++
		}
		metrics.Revenue += event.Price
		attendees += len(event.Attendees)
	}
	if len(events) > 0 {
		metrics.AverageAttendees = float64(attendees) / float64(len(events))
	}
	return metrics
}

// IsOnline reports whether lastSeen lies within OnlineWindow before now.
func IsOnline(lastSeen, now time.Time) bool {
	return lastSeen.After(now.Add(-OnlineWindow))
}

// UnreadCount counts notifications not yet read.
func UnreadCount(notifications []store.Notification) int {
	unread := 0
	for _, notification := range notifications {
		if !notification.Read {
			unread++
		}
	}
	return unread
}

// SelectedDay parses the store's selected date. Values that are not RFC 3339
// timestamps or YYYY-MM-DD dates fall back to now.
func SelectedDay(snapshot store.Snapshot, now time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if day, err := time.Parse(layout, snapshot.SelectedDate); err == nil {
			return day
		}
	}
	return now
}
