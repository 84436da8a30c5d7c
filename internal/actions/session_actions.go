package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"zibana-backend/internal/models"
)

// sessionAction is the common shape of handlers that act on the session
// store: capture the whole session state, apply a pure mutation to a copy,
// restore writes the captured snapshot back verbatim. Because mutations set
// absolute values rather than deltas, every operation is idempotent.
type sessionAction struct {
	store  SessionStore
	mutate func(*models.SessionState)
}

func (a *sessionAction) Capture(ctx context.Context, targetUserID string) (string, error) {
	state, err := a.store.Get(ctx, targetUserID)
	if err != nil {
		return "", fmt.Errorf("read session state: %w", err)
	}
	return marshalSnapshot(state)
}

func (a *sessionAction) Apply(ctx context.Context, targetUserID string) (string, error) {
	state, err := a.store.Get(ctx, targetUserID)
	if err != nil {
		return "", fmt.Errorf("read session state: %w", err)
	}
	a.mutate(state)
	if err := a.store.Put(ctx, targetUserID, state); err != nil {
		return "", fmt.Errorf("write session state: %w", err)
	}
	return marshalSnapshot(state)
}

func (a *sessionAction) Restore(ctx context.Context, targetUserID, previousState string) (string, error) {
	var state models.SessionState
	if err := json.Unmarshal([]byte(previousState), &state); err != nil {
		return "", fmt.Errorf("decode session snapshot: %w", err)
	}
	if err := a.store.Put(ctx, targetUserID, &state); err != nil {
		return "", fmt.Errorf("write session state: %w", err)
	}
	return marshalSnapshot(&state)
}

// ForceLogoutHandler ends every active session and suspends auto-login so
// the target cannot silently re-enter a compromised session.
func ForceLogoutHandler(store SessionStore) ActionHandler {
	return &sessionAction{store: store, mutate: func(s *models.SessionState) {
		s.SessionIDs = nil
		s.AutoLoginEnabled = false
	}}
}

// ResetSessionHandler drops active sessions but leaves auto-login untouched,
// used for stuck or corrupted sessions.
func ResetSessionHandler(store SessionStore) ActionHandler {
	return &sessionAction{store: store, mutate: func(s *models.SessionState) {
		s.SessionIDs = nil
	}}
}

// RestoreAutoLoginHandler re-enables auto-login eligibility
func RestoreAutoLoginHandler(store SessionStore) ActionHandler {
	return &sessionAction{store: store, mutate: func(s *models.SessionState) {
		s.AutoLoginEnabled = true
	}}
}

func marshalSnapshot(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(b), nil
}
