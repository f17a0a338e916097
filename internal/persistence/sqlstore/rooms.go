package sqlstore

import (
	"context"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var chatCollection = collection{
	fields: map[string]string{
		"id":         "id",
		"event_id":   "event_id",
		"user_id":    "user_id",
		"created_at": "created_at",
	},
	tiebreak: "id",
}

var breakoutCollection = collection{
	fields: map[string]string{
		"id":       "id",
		"event_id": "event_id",
		"name":     "name",
	},
	tiebreak: "id",
}

// InsertMessage stores a chat message. CreatedAt is assigned when zero.
func (s *Store) InsertMessage(ctx context.Context, message persistence.ChatMessage) error {
	if message.ID == "" || message.EventID == "" || message.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	created := message.CreatedAt
	if created.IsZero() {
		created = s.timestamp()
	}
	_, err := s.helper.Exec(ctx, `
		INSERT INTO chat_messages (id, event_id, user_id, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		message.ID, message.EventID, message.UserID, message.Message, formatTime(created))
	return s.mapper.MapError(err)
}

// ListMessages returns chat messages matching the query.
func (s *Store) ListMessages(ctx context.Context, q query.Query) ([]persistence.ChatMessage, error) {
	statement, args, err := chatCollection.build(`SELECT id, event_id, user_id, message, created_at FROM chat_messages`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	messages := make([]persistence.ChatMessage, 0)
	for rows.Next() {
		var (
			message persistence.ChatMessage
			created string
		)
		if err := rows.Scan(&message.ID, &message.EventID, &message.UserID, &message.Message, &created); err != nil {
			return nil, err
		}
		if message.CreatedAt, err = parseTime("created_at", created); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// CreateBreakoutRoom inserts a breakout room.
func (s *Store) CreateBreakoutRoom(ctx context.Context, room persistence.BreakoutRoom) error {
	if room.ID == "" || room.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.helper.Exec(ctx, `
		INSERT INTO breakout_rooms (id, event_id, name, capacity, stream_url, current_participants)
		VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.EventID, room.Name, room.Capacity, room.StreamURL, room.CurrentParticipants)
	return s.mapper.MapError(err)
}

// ListBreakoutRooms returns breakout rooms matching the query.
func (s *Store) ListBreakoutRooms(ctx context.Context, q query.Query) ([]persistence.BreakoutRoom, error) {
	statement, args, err := breakoutCollection.build(`
		SELECT id, event_id, name, capacity, stream_url, current_participants FROM breakout_rooms`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.BreakoutRoom, 0)
	for rows.Next() {
		var room persistence.BreakoutRoom
		if err := rows.Scan(&room.ID, &room.EventID, &room.Name, &room.Capacity, &room.StreamURL, &room.CurrentParticipants); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
