package services

import (
	"context"
	"log"
	"time"

	"zibana-backend/internal/metrics"
	"zibana-backend/internal/models"
)

// AuditStore is the insert-only persistence surface for audit entries
type AuditStore interface {
	Insert(ctx context.Context, e *models.AuditLogEntry) error
}

// AuditBroadcaster pushes new entries to live consumers (websocket consoles)
type AuditBroadcaster interface {
	Broadcast(e *models.AuditLogEntry)
}

// AuditLogger appends one immutable entry per state-changing event. It has
// no update or delete operations. Broadcast delivery is best-effort and
// never affects the caller.
type AuditLogger struct {
	Store  AuditStore
	Stream AuditBroadcaster
	Now    func() time.Time
}

func NewAuditLogger(store AuditStore, stream AuditBroadcaster) *AuditLogger {
	return &AuditLogger{
		Store:  store,
		Stream: stream,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry. The transition that produced the entry has
// already committed, so a failed write cannot unwind it: the failure is
// logged, counted, and returned for the caller to surface.
func (l *AuditLogger) Record(ctx context.Context, e *models.AuditLogEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.Now()
	}

	if err := l.Store.Insert(ctx, e); err != nil {
		metrics.AuditWriteFailures.Inc()
		log.Printf("[Audit] failed to record %s event for override %v: %v", e.ActionType, e.OverrideID, err)
		return err
	}

	if l.Stream != nil {
		l.Stream.Broadcast(e)
	}
	return nil
}
