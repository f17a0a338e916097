package sqlstore

import (
	"context"

	"github.com/example/eventhub/internal/persistence"
)

// UpsertSettings stores the settings document of a user.
func (s *Store) UpsertSettings(ctx context.Context, settings persistence.UserSettings) error {
	if settings.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.helper.Exec(ctx, `
		INSERT INTO user_settings (user_id, settings, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at`,
		settings.UserID, string(settings.Payload), formatTime(s.timestamp()))
	return s.mapper.MapError(err)
}

// GetSettings returns the settings document of a user.
func (s *Store) GetSettings(ctx context.Context, userID string) (persistence.UserSettings, error) {
	var (
		settings  persistence.UserSettings
		payload   string
		updatedAt string
	)
	row := s.helper.QueryRow(ctx, `SELECT user_id, settings, updated_at FROM user_settings WHERE user_id = ?`, userID)
	if err := row.Scan(&settings.UserID, &payload, &updatedAt); err != nil {
		return persistence.UserSettings{}, s.mapper.MapError(err)
	}
	settings.Payload = []byte(payload)
	var err error
	if settings.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.UserSettings{}, err
	}
	return settings, nil
}

// LoadState returns the payload stored under slot.
func (s *Store) LoadState(ctx context.Context, slot string) ([]byte, error) {
	var payload string
	if err := s.helper.QueryRow(ctx, `SELECT payload FROM client_state WHERE slot = ?`, slot).Scan(&payload); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return []byte(payload), nil
}

// SaveState replaces the payload stored under slot.
func (s *Store) SaveState(ctx context.Context, slot string, payload []byte) error {
	if slot == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.helper.Exec(ctx, `
		INSERT INTO client_state (slot, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		slot, string(payload), formatTime(s.timestamp()))
	return s.mapper.MapError(err)
}
