// Package migration applies versioned SQL files to a database and records
// them in a schema_migrations table. Files follow the naming convention
// {version}_{description}.sql and are applied in numeric order, each inside
// its own transaction.
package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager orchestrates scanning and executing migrations.
type Manager struct {
	scanner  *Scanner
	executor *Executor
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a Manager. A nil logger falls back to slog.Default.
func NewManager(scanner *Scanner, executor *Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger, now: time.Now}
}

// Status reports which migrations in dir are applied and which are pending.
// An applied migration whose file content changed yields ErrChecksumMismatch.
func (m *Manager) Status(ctx context.Context, fsys fs.FS, dir string) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := m.scanner.ScanMigrations(fsys, dir)
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, err
	}

	byVersion := make(map[string]AppliedMigration, len(applied))
	for _, record := range applied {
		byVersion[record.Version] = record
	}

	status := Status{Applied: applied}
	for _, migration := range available {
		record, ok := byVersion[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return Status{}, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		status.CurrentVersion = migration.Version
	}
	return status, nil
}

// Run applies every pending migration in order and stops at the first failure.
func (m *Manager) Run(ctx context.Context, fsys fs.FS, dir string) error {
	status, err := m.Status(ctx, fsys, dir)
	if err != nil {
		return err
	}
	if len(status.Pending) == 0 {
		m.logger.DebugContext(ctx, "schema is up to date", "version", status.CurrentVersion)
		return nil
	}

	for _, migration := range status.Pending {
		if err := m.executor.ExecuteMigration(ctx, migration, m.now()); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "error", err)
			return fmt.Errorf("apply migration %s: %w", migration.Version, err)
		}
		m.logger.InfoContext(ctx, "migration applied", "version", migration.Version, "description", migration.Description)
	}
	return nil
}
