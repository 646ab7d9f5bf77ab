// Package audit defines the audit trail contract for sensitive mutations.
// Admin corrections to plan state, amount overrides and role changes must
// leave a trace; the storage implementation lives in infrastructure.
package audit

import (
	"context"
	"time"

	appctx "planora/internal/core/context"
	"planora/internal/core/id"
)

// Entry is one audit record.
type Entry struct {
	ID         id.ID          `db:"id"`
	ActorID    id.ID          `db:"actor_id"`
	ActorRole  string         `db:"actor_role"`
	EntityType string         `db:"entity_type"`
	EntityID   id.ID          `db:"entity_id"`
	Action     string         `db:"action"`
	Changes    map[string]any `db:"-"`
	CreatedAt  time.Time      `db:"created_at"`
}

// Recorder persists audit entries. Implementations must be append-only.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NewEntry builds an entry for the current caller; actor fields stay zero
// for system actions (background sweeps).
func NewEntry(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) Entry {
	e := Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}
	if ident := appctx.GetIdentity(ctx); ident != nil {
		e.ActorID = ident.UserID
		e.ActorRole = ident.Role.String()
	}
	return e
}

// Discard is a no-op recorder for tests and tools.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(ctx context.Context, entry Entry) error { return nil }
