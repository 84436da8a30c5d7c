package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"zibana-backend/internal/models"
)

// userStateAction acts on the platform user-state row the same way
// sessionAction acts on the session store. Mutations assign absolute values,
// so Apply and Restore are idempotent.
type userStateAction struct {
	store  UserStateStore
	mutate func(*models.PlatformUserState)
}

func (a *userStateAction) Capture(ctx context.Context, targetUserID string) (string, error) {
	state, err := a.store.Get(ctx, targetUserID)
	if err != nil {
		return "", fmt.Errorf("read user state: %w", err)
	}
	return marshalSnapshot(state)
}

func (a *userStateAction) Apply(ctx context.Context, targetUserID string) (string, error) {
	state, err := a.store.Get(ctx, targetUserID)
	if err != nil {
		return "", fmt.Errorf("read user state: %w", err)
	}
	a.mutate(state)
	if err := a.store.Save(ctx, state); err != nil {
		return "", fmt.Errorf("write user state: %w", err)
	}
	return marshalSnapshot(state)
}

func (a *userStateAction) Restore(ctx context.Context, targetUserID, previousState string) (string, error) {
	var state models.PlatformUserState
	if err := json.Unmarshal([]byte(previousState), &state); err != nil {
		return "", fmt.Errorf("decode user state snapshot: %w", err)
	}
	// Snapshots are keyed to the user they were captured from
	state.UserID = targetUserID
	if err := a.store.Save(ctx, &state); err != nil {
		return "", fmt.Errorf("write user state: %w", err)
	}
	return marshalSnapshot(&state)
}

// EnableDriverOnlineHandler temporarily forces the driver online flag on
func EnableDriverOnlineHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.DriverOnline = true
	}}
}

// DisableDriverOnlineHandler temporarily forces the driver online flag off
func DisableDriverOnlineHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.DriverOnline = false
	}}
}

// ClearCancellationFlagsHandler zeroes incorrectly accrued cancellation and
// acceptance counters.
func ClearCancellationFlagsHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.CancellationCount = 0
		s.AcceptanceCount = 0
	}}
}

// RestoreDriverAccessHandler lifts a driver access revocation after dispute
// resolution.
func RestoreDriverAccessHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.DriverAccessRevoked = false
	}}
}

// ClearRiderCancellationWarningHandler removes a false cancellation warning
// from a rider account.
func ClearRiderCancellationWarningHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.RiderCancellationWarning = false
	}}
}

// RestoreRideAccessHandler restores ride access after dispute review
func RestoreRideAccessHandler(store UserStateStore) ActionHandler {
	return &userStateAction{store: store, mutate: func(s *models.PlatformUserState) {
		s.RideAccessRevoked = false
	}}
}
