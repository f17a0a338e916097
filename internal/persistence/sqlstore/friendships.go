package sqlstore

import (
	"context"
	"fmt"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

var friendshipCollection = collection{
	fields: map[string]string{
		"user_id":    "f.user_id",
		"friend_id":  "f.friend_id",
		"status":     "f.status",
		"created_at": "f.created_at",
		"full_name":  "p.full_name",
	},
	tiebreak: "f.user_id, f.friend_id",
}

// CreateFriendship inserts a friendship row.
func (s *Store) CreateFriendship(ctx context.Context, friendship persistence.Friendship) error {
	if friendship.UserID == "" || friendship.FriendID == "" {
		return persistence.ErrConstraintViolation
	}
	status := friendship.Status
	if status == "" {
		status = persistence.FriendshipPending
	}
	now := formatTime(s.timestamp())
	_, err := s.helper.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		friendship.UserID, friendship.FriendID, status, now, now)
	return s.mapper.MapError(err)
}

// UpdateFriendshipStatus changes the status of the (user, friend) row.
func (s *Store) UpdateFriendshipStatus(ctx context.Context, userID, friendID, status string) error {
	result, err := s.helper.Exec(ctx, `
		UPDATE friendships SET status = ?, updated_at = ?
		WHERE user_id = ? AND friend_id = ?`,
		status, formatTime(s.timestamp()), userID, friendID)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

// DeleteFriendship removes the (user, friend) row.
func (s *Store) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	result, err := s.helper.Exec(ctx, `DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`, userID, friendID)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return requireAffected(result)
}

// ListFriendships returns friendships matching the query with the profile of
// the chosen side attached. Rows whose counterpart has no profile get an
// empty profile carrying only the identifier.
func (s *Store) ListFriendships(ctx context.Context, q query.Query, side persistence.FriendshipSide) ([]persistence.Friendship, error) {
	var join string
	switch side {
	case persistence.SideFriend:
		join = "f.friend_id"
	case persistence.SideRequester:
		join = "f.user_id"
	default:
		return nil, fmt.Errorf("%w: unknown friendship side %d", persistence.ErrInvalidQuery, side)
	}

	statement, args, err := friendshipCollection.build(`
		SELECT f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
			`+join+`, COALESCE(p.username, ''), COALESCE(p.full_name, ''), COALESCE(p.avatar_url, ''),
			COALESCE(p.website, ''), COALESCE(p.last_seen, '')
		FROM friendships f
		LEFT JOIN profiles p ON p.id = `+join, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.helper.Query(ctx, statement, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	friendships := make([]persistence.Friendship, 0)
	for rows.Next() {
		var (
			friendship                   persistence.Friendship
			created, updatedAt, lastSeen string
		)
		if err := rows.Scan(
			&friendship.UserID,
			&friendship.FriendID,
			&friendship.Status,
			&created,
			&updatedAt,
			&friendship.Profile.ID,
			&friendship.Profile.Username,
			&friendship.Profile.FullName,
			&friendship.Profile.AvatarURL,
			&friendship.Profile.Website,
			&lastSeen,
		); err != nil {
			return nil, err
		}
		if friendship.CreatedAt, err = parseTime("created_at", created); err != nil {
			return nil, err
		}
		if friendship.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		if lastSeen != "" {
			if friendship.Profile.LastSeen, err = parseTime("last_seen", lastSeen); err != nil {
				return nil, err
			}
		}
		friendships = append(friendships, friendship)
	}
	return friendships, rows.Err()
}
