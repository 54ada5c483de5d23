// Package services contains the mutation services of the tracker. Every
// operation validates its input first and touches the ledger store only once,
// so a rejected call leaves no partial state behind. Persistence and change
// events are fire-and-forget: their failure is logged, never rolled back into
// the caller.
package services

import (
	"context"
	"log/slog"

	"finledger/internal/ledger"
)

// SnapshotSaver persists the full ledger state after a mutation.
type SnapshotSaver interface {
	SaveState(ctx context.Context, st ledger.State) error
}

// EventPublisher emits a ledger-change event after a mutation.
type EventPublisher interface {
	PublishLedgerChange(ctx context.Context, collection, op, id string) error
}

// Syncer fans a committed mutation out to the snapshot store and the event
// bus. Both targets are optional.
type Syncer struct {
	snapshots SnapshotSaver
	events    EventPublisher
}

func NewSyncer(snapshots SnapshotSaver, events EventPublisher) *Syncer {
	return &Syncer{snapshots: snapshots, events: events}
}

// AfterChange is called once per committed mutation. The in-memory state is
// already authoritative at this point; a lagging snapshot is acceptable.
func (s *Syncer) AfterChange(ctx context.Context, st ledger.State, collection, op, id string) {
	if s == nil {
		return
	}
	if s.snapshots != nil {
		if err := s.snapshots.SaveState(ctx, st); err != nil {
			slog.ErrorContext(ctx, "Failed to persist snapshot",
				"error", err, "collection", collection, "operation", op, "id", id)
		}
	}
	if s.events != nil {
		if err := s.events.PublishLedgerChange(ctx, collection, op, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish change event",
				"error", err, "collection", collection, "operation", op, "id", id)
		}
	}
}
