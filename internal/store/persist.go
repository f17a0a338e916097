package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/eventhub/internal/logging"
	"github.com/example/eventhub/internal/persistence"
)

// schemaVersion is written with every persisted snapshot.
const schemaVersion = 0

// ErrCorruptState is returned when a persisted record cannot be decoded.
var ErrCorruptState = errors.New("store: corrupt persisted state")

type envelope struct {
	State   Snapshot `json:"state"`
	Version int      `json:"version"`
}

// Persist returns an observer that writes every committed snapshot to slot.
// Write failures are logged and otherwise ignored; the in-memory state stays
// authoritative.
func Persist(ctx context.Context, repo persistence.StateRepository, slot string, logger *slog.Logger) Observer {
	log := logging.Scoped(ctx, logger, "component", "store", "persist", "slot", slot)
	return func(change Change) {
		payload, err := json.Marshal(envelope{State: change.Snapshot, Version: schemaVersion})
		if err != nil {
			log.ErrorContext(ctx, "failed to encode state", "error", err, "version", change.Version)
			return
		}
		if err := repo.SaveState(ctx, slot, payload); err != nil {
			log.ErrorContext(ctx, "failed to persist state", "error", err, "mutation", string(change.Mutation), "version", change.Version)
			return
		}
		log.DebugContext(ctx, "state persisted", "mutation", string(change.Mutation), "version", change.Version)
	}
}

// Rehydrate builds a store from the record in slot. A slot that was never
// written yields an empty store.
func Rehydrate(ctx context.Context, repo persistence.StateRepository, slot string, opts ...Option) (*Store, error) {
	payload, err := repo.LoadState(ctx, slot)
	if errors.Is(err, persistence.ErrNotFound) {
		return New(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load slot %q: %w", slot, err)
	}

	var decoded envelope
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: slot %q: %v", ErrCorruptState, slot, err)
	}
	return NewFromSnapshot(decoded.State, opts...), nil
}
