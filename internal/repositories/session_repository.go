package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"zibana-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyFmt = "session:%s"

// SessionRepository is the Redis-backed session store the session action
// handlers mutate. Session state is owned by the platform's auth services;
// the override engine reads and rewrites it as opaque snapshots.
type SessionRepository struct {
	Client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{Client: client}
}

// Get returns the user's session state. A user with no key yet gets the
// platform default (no sessions, auto-login eligible).
func (r *SessionRepository) Get(ctx context.Context, userID string) (*models.SessionState, error) {
	if r.Client == nil {
		return nil, errors.New("session store unavailable")
	}

	data, err := r.Client.Get(ctx, fmt.Sprintf(sessionKeyFmt, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.SessionState{AutoLoginEnabled: true}, nil
	}
	if err != nil {
		return nil, err
	}

	var state models.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session state for %s: %w", userID, err)
	}
	return &state, nil
}

// Put overwrites the user's session state
func (r *SessionRepository) Put(ctx context.Context, userID string, state *models.SessionState) error {
	if r.Client == nil {
		return errors.New("session store unavailable")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, fmt.Sprintf(sessionKeyFmt, userID), data, 0).Err()
}
