package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var ratingCollection = collection{
	fields: map[string]string{
		"event_id":   "r.event_id",
		"user_id":    "r.user_id",
		"rating":     "r.rating",
		"created_at": "r.created_at",
		"updated_at": "r.updated_at",
	},
	tiebreak: "r.user_id",
}

// UpsertRating inserts the rating or replaces the score and comment of the
// existing (event, user) row.
func (s *Store) UpsertRating(ctx context.Context, rating persistence.Rating) error {
	if rating.EventID == "" || rating.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	now := formatTime(s.timestamp())
	_, err := s.helper.Exec(ctx, `
		INSERT INTO event_ratings (event_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			updated_at = excluded.updated_at`,
		rating.EventID, rating.UserID, rating.Rating, rating.Comment, now, now)
	return s.mapper.MapError(err)
}

// ListRatings returns ratings joined with the reviewer's full name.
func (s *Store) ListRatings(ctx context.Context, q query.Query) ([]persistence.Rating, error) {
	statement, args, err := ratingCollection.build(`
		SELECT r.event_id, r.user_id, r.rating, r.comment, COALESCE(p.full_name, ''), r.created_at, r.updated_at
		FROM event_ratings r
		LEFT JOIN profiles p ON p.id = r.user_id`, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	ratings := make([]persistence.Rating, 0)
	for rows.Next() {
		var (
			rating             persistence.Rating
			created, updatedAt string
		)
		if err := rows.Scan(&rating.EventID, &rating.UserID, &rating.Rating, &rating.Comment, &rating.ReviewerName, &created, &updatedAt); err != nil {
			return nil, err
		}
		if rating.CreatedAt, err = parseTime("created_at", created); err != nil {
			return nil, err
		}
		if rating.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// AverageRating computes the mean score of an event.
func (s *Store) AverageRating(ctx context.Context, eventID string) (float64, bool, error) {
	var average sql.NullFloat64
	if err := s.helper.QueryRow(ctx, `SELECT AVG(rating) FROM event_ratings WHERE event_id = ?`, eventID).Scan(&average); err != nil {
		return 0, false, s.mapper.MapError(err)
	}
	return average.Float64, average.Valid, nil
}
