// Package sqlstore implements the persistence repositories on database/sql.
// SQLite (modernc.org/sqlite) is the default backend; postgres:// DSNs are
// served through lib/pq. Queries are written once with ? placeholders and
// rebound per dialect.
package sqlstore

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/persistence/sqlstore/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// timeLayout keeps every stored timestamp the same width so that text
// ordering matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements every repository in the persistence package.
type Store struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ persistence.AccountRepository      = (*Store)(nil)
	_ persistence.ProfileRepository      = (*Store)(nil)
	_ persistence.EventRepository        = (*Store)(nil)
	_ persistence.TicketRepository       = (*Store)(nil)
	_ persistence.RatingRepository       = (*Store)(nil)
	_ persistence.FriendshipRepository   = (*Store)(nil)
	_ persistence.ChatRepository         = (*Store)(nil)
	_ persistence.BreakoutRoomRepository = (*Store)(nil)
	_ persistence.SettingsRepository     = (*Store)(nil)
	_ persistence.StateRepository        = (*Store)(nil)
)

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used while migrating.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to the database named by dsn.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	pool, err := NewConnectionPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Dialect reports the SQL flavour in use.
func (s *Store) Dialect() Dialect {
	return s.pool.Dialect()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(),
		migration.NewExecutor(s.pool.DB(), s.pool.Dialect().Rebind),
		s.logger,
	)
	if err := manager.Run(ctx, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(column, raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", column, err)
	}
	return values, nil
}
