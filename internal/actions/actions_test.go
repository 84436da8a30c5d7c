package actions

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"zibana-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	mu    sync.Mutex
	state map[string]*models.SessionState
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{state: make(map[string]*models.SessionState)}
}

func (f *fakeSessionStore) Get(ctx context.Context, userID string) (*models.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.state[userID]; ok {
		clone := *s
		clone.SessionIDs = append([]string(nil), s.SessionIDs...)
		return &clone, nil
	}
	return &models.SessionState{AutoLoginEnabled: true}, nil
}

func (f *fakeSessionStore) Put(ctx context.Context, userID string, s *models.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *s
	clone.SessionIDs = append([]string(nil), s.SessionIDs...)
	f.state[userID] = &clone
	return nil
}

type fakeUserStateStore struct {
	mu    sync.Mutex
	state map[string]*models.PlatformUserState
}

func newFakeUserStateStore() *fakeUserStateStore {
	return &fakeUserStateStore{state: make(map[string]*models.PlatformUserState)}
}

func (f *fakeUserStateStore) Get(ctx context.Context, userID string) (*models.PlatformUserState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.state[userID]; ok {
		clone := *s
		return &clone, nil
	}
	return &models.PlatformUserState{UserID: userID}, nil
}

func (f *fakeUserStateStore) Save(ctx context.Context, s *models.PlatformUserState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *s
	f.state[s.UserID] = &clone
	return nil
}

func TestForceLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeSessionStore()
	store.Put(ctx, "user-1", &models.SessionState{
		SessionIDs:       []string{"sess-a", "sess-b"},
		AutoLoginEnabled: true,
	})

	h := ForceLogoutHandler(store)

	before, err := h.Capture(ctx, "user-1")
	require.NoError(t, err)

	after, err := h.Apply(ctx, "user-1")
	require.NoError(t, err)

	var applied models.SessionState
	require.NoError(t, json.Unmarshal([]byte(after), &applied))
	assert.Empty(t, applied.SessionIDs)
	assert.False(t, applied.AutoLoginEnabled)

	// Restore(Capture_before) composed with Apply is the identity on
	// external state
	_, err = h.Restore(ctx, "user-1", before)
	require.NoError(t, err)

	current, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-a", "sess-b"}, current.SessionIDs)
	assert.True(t, current.AutoLoginEnabled)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeSessionStore()
	store.Put(ctx, "user-2", &models.SessionState{SessionIDs: []string{"sess-x"}, AutoLoginEnabled: true})

	h := ResetSessionHandler(store)

	first, err := h.Apply(ctx, "user-2")
	require.NoError(t, err)
	second, err := h.Apply(ctx, "user-2")
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	// Auto-login survives a session reset
	current, _ := store.Get(ctx, "user-2")
	assert.True(t, current.AutoLoginEnabled)
}

func TestRestoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStateStore()
	store.Save(ctx, &models.PlatformUserState{UserID: "driver-1", DriverOnline: false, CancellationCount: 4})

	h := EnableDriverOnlineHandler(store)

	before, err := h.Capture(ctx, "driver-1")
	require.NoError(t, err)
	_, err = h.Apply(ctx, "driver-1")
	require.NoError(t, err)

	_, err = h.Restore(ctx, "driver-1", before)
	require.NoError(t, err)
	_, err = h.Restore(ctx, "driver-1", before)
	require.NoError(t, err)

	current, _ := store.Get(ctx, "driver-1")
	assert.False(t, current.DriverOnline)
	assert.Equal(t, 4, current.CancellationCount)
}

func TestClearCancellationFlags(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStateStore()
	store.Save(ctx, &models.PlatformUserState{
		UserID:            "driver-2",
		CancellationCount: 7,
		AcceptanceCount:   3,
		DriverOnline:      true,
	})

	h := ClearCancellationFlagsHandler(store)

	_, err := h.Apply(ctx, "driver-2")
	require.NoError(t, err)

	current, _ := store.Get(ctx, "driver-2")
	assert.Zero(t, current.CancellationCount)
	assert.Zero(t, current.AcceptanceCount)
	assert.True(t, current.DriverOnline, "unrelated flags untouched")
}

func TestRestoreRejectsMalformedSnapshot(t *testing.T) {
	ctx := context.Background()

	_, err := ForceLogoutHandler(newFakeSessionStore()).Restore(ctx, "user-3", "not json")
	assert.Error(t, err)

	_, err = RestoreRideAccessHandler(newFakeUserStateStore()).Restore(ctx, "user-3", "{broken")
	assert.Error(t, err)
}

func TestCaptureDefaultsForUnknownUser(t *testing.T) {
	ctx := context.Background()

	snap, err := RestoreAutoLoginHandler(newFakeSessionStore()).Capture(ctx, "never-seen")
	require.NoError(t, err)

	var state models.SessionState
	require.NoError(t, json.Unmarshal([]byte(snap), &state))
	assert.True(t, state.AutoLoginEnabled)
	assert.Empty(t, state.SessionIDs)
}
