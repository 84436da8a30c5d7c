package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"zibana-backend/internal/actions"
	"zibana-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	store     *fakeOverrideStore
	audit     *fakeAuditStore
	handler   *scriptedHandler
	failing   *scriptedHandler
	scheduler *ExpiryScheduler
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	store := newFakeOverrideStore()
	audit := &fakeAuditStore{}
	handler := &scriptedHandler{captureState: "{}", applyState: "{}"}
	failing := &scriptedHandler{captureState: "{}", applyState: "{}"}

	registry := actions.NewRegistry()
	require.NoError(t, registry.Register(models.ActionForceLogout, handler))
	require.NoError(t, registry.Register(models.ActionDisableDriverOnline, failing))

	service := NewOverrideService(store, registry, NewAuditLogger(audit, nil), time.Second)
	scheduler := NewExpiryScheduler(service, time.Minute)

	return &sweepFixture{store: store, audit: audit, handler: handler, failing: failing, scheduler: scheduler}
}

func (fx *sweepFixture) seedOverride(t *testing.T, target string, action models.ActionType, expiresAt *time.Time) *models.Override {
	t.Helper()
	prev := "{}"
	o := &models.Override{
		TargetUserID:      target,
		AdminActorID:      "admin-7",
		ActionType:        action,
		OverrideReason:    "Temporary correction",
		Status:            models.StatusActive,
		OverrideExpiresAt: expiresAt,
		PreviousState:     &prev,
		NewState:          &prev,
		CreatedAt:         time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, fx.store.Create(context.Background(), o))
	return o
}

func TestRunSweepExpiresDueOverrides(t *testing.T) {
	fx := newSweepFixture(t)
	past := time.Now().UTC().Add(-time.Minute)
	o := fx.seedOverride(t, "user-1", models.ActionForceLogout, &past)

	expired, failed := fx.scheduler.RunSweep(context.Background())
	assert.Equal(t, 1, expired)
	assert.Zero(t, failed)

	current, err := fx.store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, current.Status)
	require.NotNil(t, current.RevertedBy)
	assert.Equal(t, SystemActorID, *current.RevertedBy)
	require.NotNil(t, current.RevertReason)
	assert.Equal(t, ExpiredReason, *current.RevertReason)

	// The sweep restored captured state before flipping the status
	_, _, restores := fx.handler.counts()
	assert.Equal(t, 1, restores)

	entries := fx.audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, SystemActorID, entries[0].AdminActorID)
	require.NotNil(t, entries[0].Metadata)
	assert.Contains(t, *entries[0].Metadata, `"event":"expire"`)
}

func TestRunSweepLeavesFutureAndOpenEndedAlone(t *testing.T) {
	fx := newSweepFixture(t)
	future := time.Now().UTC().Add(time.Hour)
	notDue := fx.seedOverride(t, "user-1", models.ActionForceLogout, &future)
	openEnded := fx.seedOverride(t, "user-2", models.ActionForceLogout, nil)

	expired, failed := fx.scheduler.RunSweep(context.Background())
	assert.Zero(t, expired)
	assert.Zero(t, failed)

	for _, id := range []string{notDue.ID, openEnded.ID} {
		current, err := fx.store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, current.Status)
	}
	assert.Empty(t, fx.audit.all())
}

func TestRunSweepIsolatesHandlerFailures(t *testing.T) {
	fx := newSweepFixture(t)
	fx.failing.restoreErr = fmt.Errorf("user state backend unreachable")

	past := time.Now().UTC().Add(-time.Minute)
	healthy := fx.seedOverride(t, "user-1", models.ActionForceLogout, &past)
	broken := fx.seedOverride(t, "user-2", models.ActionDisableDriverOnline, &past)

	expired, failed := fx.scheduler.RunSweep(context.Background())
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, failed)

	current, err := fx.store.GetByID(context.Background(), healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, current.Status)

	// The failing target stays active and gets retried on the next pass
	current, err = fx.store.GetByID(context.Background(), broken.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, current.Status)

	fx.failing.restoreErr = nil
	expired, failed = fx.scheduler.RunSweep(context.Background())
	assert.Equal(t, 1, expired)
	assert.Zero(t, failed)
}

func TestRunSweepSkipsOverridesLostToManualRevert(t *testing.T) {
	fx := newSweepFixture(t)
	past := time.Now().UTC().Add(-time.Minute)
	o := fx.seedOverride(t, "user-1", models.ActionForceLogout, &past)

	// Simulate a manual revert landing between the scan and the transition:
	// the scan result still carries the stale active copy.
	_, err := fx.store.MarkReverted(context.Background(), o.ID, "admin-9", "Manually resolved", time.Now().UTC())
	require.NoError(t, err)
	stale := *o
	fx.store.staleDue = []*models.Override{&stale}

	expired, failed := fx.scheduler.RunSweep(context.Background())
	assert.Zero(t, expired)
	assert.Zero(t, failed)

	current, err := fx.store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReverted, current.Status)
}
