package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var eventCollection = collection{
	fields: map[string]string{
		"id":           "id",
		"title":        "title",
		"category":     "category",
		"status":       "status",
		"organizer_id": "organizer_id",
		"start_date":   "start_date",
		"end_date":     "end_date",
		"created_at":   "created_at",
	},
	tiebreak: "id",
}

const eventColumns = `id, title, description, start_date, end_date, location, image_url, category, price,
	capacity, organizer_id, is_virtual, stream_url, status, tags, attendees, created_at, updated_at`

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	tags, err := encodeStrings(event.Tags)
	if err != nil {
		return err
	}
	attendees, err := encodeStrings(event.Attendees)
	if err != nil {
		return err
	}
	now := s.timestamp()
	_, err = s.helper.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		formatTime(event.StartDate),
		formatTime(event.EndDate),
		event.Location,
		event.ImageURL,
		event.Category,
		event.Price,
		event.Capacity,
		event.OrganizerID,
		event.IsVirtual,
		event.StreamURL,
		event.Status,
		tags,
		attendees,
		formatTime(now),
		formatTime(now),
	)
	return s.mapper.MapError(err)
}

// UpdateEvent overwrites every mutable column of an existing event.
func (s *Store) UpdateEvent(ctx context.Context, event persistence.Event) error {
	tags, err := encodeStrings(event.Tags)
	if err != nil {
		return err
	}
	attendees, err := encodeStrings(event.Attendees)
	if err != nil {
		return err
	}
	result, err := s.helper.Exec(ctx, `
		UPDATE events
		SET title = ?, description = ?, start_date = ?, end_date = ?, location = ?, image_url = ?,
			category = ?, price = ?, capacity = ?, organizer_id = ?, is_virtual = ?, stream_url = ?,
			status = ?, tags = ?, attendees = ?, updated_at = ?
		WHERE id = ?`,
		event.Title,
		event.Description,
		formatTime(event.StartDate),
		formatTime(event.EndDate),
		event.Location,
		event.ImageURL,
		event.Category,
		event.Price,
		event.Capacity,
		event.OrganizerID,
		event.IsVirtual,
		event.StreamURL,
		event.Status,
		tags,
		attendees,
		formatTime(s.timestamp()),
		event.ID,
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	rows, err := s.helper.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return persistence.Event{}, s.mapper.MapError(err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return persistence.Event{}, err
	}
	if len(events) == 0 {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return events[0], nil
}

// ListEvents returns events matching the query.
func (s *Store) ListEvents(ctx context.Context, q query.Query) ([]persistence.Event, error) {
	statement, args, err := eventCollection.build(`SELECT `+eventColumns+` FROM events`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	return scanEvents(rows)
}

// DeleteEvent removes an event together with its tickets, ratings, messages
// and breakout rooms.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.helper.Exec(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event                    persistence.Event
		start, end, created, upd string
		tags, attendees          string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&start,
		&end,
		&event.Location,
		&event.ImageURL,
		&event.Category,
		&event.Price,
		&event.Capacity,
		&event.OrganizerID,
		&event.IsVirtual,
		&event.StreamURL,
		&event.Status,
		&tags,
		&attendees,
		&created,
		&upd,
	); err != nil {
		return persistence.Event{}, err
	}

	var err error
	if event.StartDate, err = parseTime("start_date", start); err != nil {
		return persistence.Event{}, err
	}
	if event.EndDate, err = parseTime("end_date", end); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime("created_at", created); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime("updated_at", upd); err != nil {
		return persistence.Event{}, err
	}
	if event.Tags, err = decodeStrings("tags", tags); err != nil {
		return persistence.Event{}, err
	}
	if event.Attendees, err = decodeStrings("attendees", attendees); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func scanEvents(rows *sql.Rows) ([]persistence.Event, error) {
	defer rows.Close()

	events := make([]persistence.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
