package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/settings"
)

// SettingsService reads and stores the current user's settings document.
type SettingsService struct {
	backend gateway.Settings
	session SessionSource
	logger  *slog.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(backend gateway.Settings, session SessionSource) *SettingsService {
	return NewSettingsServiceWithLogger(backend, session, nil)
}

// NewSettingsServiceWithLogger constructs a SettingsService with a specified logger.
func NewSettingsServiceWithLogger(backend gateway.Settings, session SessionSource, logger *slog.Logger) *SettingsService {
	return &SettingsService{backend: backend, session: session, logger: defaultLogger(logger)}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// Load returns the stored settings laid over the defaults. A user who never
// saved settings gets the defaults.
func (s *SettingsService) Load(ctx context.Context) (settings.Settings, error) {
	if s == nil || s.backend == nil {
		return settings.Settings{}, fmt.Errorf("SettingsService is not configured")
	}
	userID := s.session.userID()
	if userID == "" {
		return settings.Settings{}, ErrUnauthorized
	}

	current := settings.Defaults()
	stored, err := s.backend.GetSettings(ctx, userID)
	if errors.Is(err, gateway.ErrNotFound) {
		return current, nil
	}
	if err != nil {
		s.loggerWith(ctx, "Load").ErrorContext(ctx, "failed to load settings", "error", err, "error_kind", ErrorKind(err))
		return settings.Settings{}, err
	}
	if len(stored.Settings) > 0 {
		if err := json.Unmarshal(stored.Settings, &current); err != nil {
			return settings.Settings{}, fmt.Errorf("decode stored settings: %w", err)
		}
	}
	return current, nil
}

// Save upserts the whole settings document.
func (s *SettingsService) Save(ctx context.Context, values settings.Settings) error {
	if s == nil || s.backend == nil {
		return fmt.Errorf("SettingsService is not configured")
	}
	userID := s.session.userID()
	if userID == "" {
		return ErrUnauthorized
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.backend.SaveSettings(ctx, gateway.UserSettings{UserID: userID, Settings: data}); err != nil {
		s.loggerWith(ctx, "Save").ErrorContext(ctx, "failed to save settings", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.loggerWith(ctx, "Save").InfoContext(ctx, "settings saved")
	return nil
}

// Apply changes one field by id and saves the result.
func (s *SettingsService) Apply(ctx context.Context, field, value string) (settings.Settings, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := current.Apply(field, value); err != nil {
		vErr := &ValidationError{}
		vErr.add(field, err.Error())
		return settings.Settings{}, vErr
	}
	if err := s.Save(ctx, current); err != nil {
		return settings.Settings{}, err
	}
	return current, nil
}
