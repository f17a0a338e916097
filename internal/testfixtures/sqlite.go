package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/eventhub/internal/persistence/sqlstore"
)

// SQLiteHarness provides a migrated store backed by a temporary SQLite file
// for integration-style persistence tests.
type SQLiteHarness struct {
	Store *sqlstore.Store
	Clock *Clock

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "eventhub.db")
	clock := NewClock(ReferenceTime())

	store, err := sqlstore.Open(context.Background(), "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqlstore.WithClock(clock.NowFunc()))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store: store,
		Clock: clock,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
