package actions

import (
	"context"

	"zibana-backend/internal/models"
)

// ActionHandler is the pluggable unit that knows how to read, mutate and
// restore the external state one action type targets. All three operations
// must be idempotent: applying an already-applied state or restoring the
// same snapshot twice must not error or double-mutate.
type ActionHandler interface {
	// Capture reads the target's current external state without mutating it
	// and returns it as an opaque JSON snapshot.
	Capture(ctx context.Context, targetUserID string) (string, error)

	// Apply performs the mutation and returns the resulting state snapshot.
	Apply(ctx context.Context, targetUserID string) (string, error)

	// Restore reverses the mutation back to a prior snapshot and returns the
	// resulting state. Used by both manual revert and auto-expiry.
	Restore(ctx context.Context, targetUserID, previousState string) (string, error)
}

// SessionStore is the session-state collaborator the session action handlers
// mutate. Backed by Redis in production.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.SessionState, error)
	Put(ctx context.Context, userID string, state *models.SessionState) error
}

// UserStateStore is the platform flag-state collaborator the driver and
// rider action handlers mutate. Backed by Postgres in production.
type UserStateStore interface {
	Get(ctx context.Context, userID string) (*models.PlatformUserState, error)
	Save(ctx context.Context, state *models.PlatformUserState) error
}
