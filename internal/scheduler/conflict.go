// Package scheduler detects overlapping events for attendees and venues.
package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/example/eventhub/internal/store"
)

// ConflictType describes why two events clash.
type ConflictType string

const (
	// ConflictTypeAttendance means the user already holds a ticket for an
	// overlapping event.
	ConflictTypeAttendance ConflictType = "attendance"
	// ConflictTypeVenue means another event occupies the same location.
	ConflictTypeVenue ConflictType = "venue"
)

// Conflict is one event overlapping the candidate.
type Conflict struct {
	WithEventID string
	Title       string
	Type        ConflictType
	Location    string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect. An
// interval that ends at or before its start occupies its start instant only.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aEnd = effectiveEnd(aStart, aEnd)
	bEnd = effectiveEnd(bStart, bEnd)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func effectiveEnd(start, end time.Time) time.Time {
	if !end.After(start) {
		return start.Add(time.Nanosecond)
	}
	return end
}

// DetectAttendanceConflicts returns the attended events that overlap the
// candidate, ordered by start.
func DetectAttendanceConflicts(attending []store.Event, candidate store.Event) []Conflict {
	return detect(attending, candidate, ConflictTypeAttendance, func(store.Event) bool { return true })
}

// DetectVenueConflicts returns the physical events at the candidate's
// location that overlap it. Virtual events and blank locations never clash.
func DetectVenueConflicts(existing []store.Event, candidate store.Event) []Conflict {
	venue := normalizeVenue(candidate.Location)
	if candidate.IsVirtual || venue == "" {
		return nil
	}
	return detect(existing, candidate, ConflictTypeVenue, func(e store.Event) bool {
		return !e.IsVirtual && normalizeVenue(e.Location) == venue
	})
}

func detect(events []store.Event, candidate store.Event, kind ConflictType, relevant func(store.Event) bool) []Conflict {
	var conflicts []Conflict
	for _, event := range events {
		if event.ID == candidate.ID || event.Status == store.EventStatusCancelled || !relevant(event) {
			continue
		}
		if !Overlaps(event.Date, event.EndDate, candidate.Date, candidate.EndDate) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithEventID: event.ID,
			Title:       event.Title,
			Type:        kind,
			Location:    event.Location,
			Start:       event.Date,
			End:         event.EndDate,
		})
	}
	sort.SliceStable(conflicts, func(i, j int) bool { return conflicts[i].Start.Before(conflicts[j].Start) })
	return conflicts
}

func normalizeVenue(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}
