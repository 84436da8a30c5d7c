package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"zibana-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	entries []*models.AuditLogEntry
}

func (f *fakeBroadcaster) Broadcast(e *models.AuditLogEntry) {
	f.entries = append(f.entries, e)
}

func TestRecordStampsAndBroadcasts(t *testing.T) {
	store := &fakeAuditStore{}
	stream := &fakeBroadcaster{}
	logger := NewAuditLogger(store, stream)

	entry := &models.AuditLogEntry{
		AdminActorID:   "admin-7",
		AffectedUserID: "user-42",
		ActionType:     models.ActionForceLogout,
		OverrideReason: "Account takeover report",
	}
	require.NoError(t, logger.Record(context.Background(), entry))

	require.Len(t, store.all(), 1)
	assert.False(t, entry.CreatedAt.IsZero())
	require.Len(t, stream.entries, 1)
	assert.Equal(t, "user-42", stream.entries[0].AffectedUserID)
}

func TestRecordPreservesExplicitTimestamp(t *testing.T) {
	store := &fakeAuditStore{}
	logger := NewAuditLogger(store, nil)

	stamped := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entry := &models.AuditLogEntry{
		AdminActorID:   "admin-7",
		AffectedUserID: "user-42",
		ActionType:     models.ActionForceLogout,
		CreatedAt:      stamped,
	}
	require.NoError(t, logger.Record(context.Background(), entry))
	assert.Equal(t, stamped, store.all()[0].CreatedAt)
}

func TestRecordSurfacesInsertFailureWithoutBroadcast(t *testing.T) {
	store := &fakeAuditStore{insertErr: fmt.Errorf("audit table unavailable")}
	stream := &fakeBroadcaster{}
	logger := NewAuditLogger(store, stream)

	err := logger.Record(context.Background(), &models.AuditLogEntry{
		AdminActorID:   "admin-7",
		AffectedUserID: "user-42",
		ActionType:     models.ActionForceLogout,
	})
	require.Error(t, err)
	assert.Empty(t, stream.entries)
}
