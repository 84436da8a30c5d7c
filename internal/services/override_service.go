package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"zibana-backend/internal/actions"
	"zibana-backend/internal/cache"
	"zibana-backend/internal/metrics"
	"zibana-backend/internal/models"
)

// ExpiredReason is recorded on every sweep-driven transition
const ExpiredReason = "Automatically expired"

// SystemActorID is attributed to transitions the expiry sweep drives
const SystemActorID = "system"

// OverrideStore is the durable source of truth for override status. Create
// must reject a second active override for the same (target, action) pair,
// and the Mark* transitions must be compare-and-set on status = 'active' so
// concurrent revert/expiry races resolve to exactly one winner.
type OverrideStore interface {
	Create(ctx context.Context, o *models.Override) error
	GetByID(ctx context.Context, id string) (*models.Override, error)
	GetActive(ctx context.Context, targetUserID string, actionType models.ActionType) (*models.Override, error)
	MarkReverted(ctx context.Context, id, actorID, reason string, at time.Time) (*models.Override, error)
	MarkExpired(ctx context.Context, id, reason string, at time.Time) (*models.Override, error)
	ListActive(ctx context.Context) ([]*models.Override, error)
	ListByTarget(ctx context.Context, targetUserID string) ([]*models.Override, error)
	ListExpiredDue(ctx context.Context, now time.Time) ([]*models.Override, error)
}

// OverrideService orchestrates the override state machine: validate, invoke
// the action handler, persist, audit. Handler calls run under a bounded
// timeout so a stuck external system cannot wedge the pipeline.
type OverrideService struct {
	Store          OverrideStore
	Registry       *actions.Registry
	Audit          *AuditLogger
	HandlerTimeout time.Duration
	Now            func() time.Time
}

func NewOverrideService(store OverrideStore, registry *actions.Registry, audit *AuditLogger, handlerTimeout time.Duration) *OverrideService {
	return &OverrideService{
		Store:          store,
		Registry:       registry,
		Audit:          audit,
		HandlerTimeout: handlerTimeout,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// Apply creates and activates a new override. Nothing is persisted when the
// handler fails: no override row and no audit entry.
func (s *OverrideService) Apply(ctx context.Context, req *models.ApplyOverrideRequest, actorID string) (*models.Override, error) {
	if strings.TrimSpace(req.TargetUserID) == "" {
		return nil, &models.ValidationError{Reason: "targetUserId is required"}
	}
	if !req.ActionType.Valid() {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("unknown action type %q", req.ActionType)}
	}
	if strings.TrimSpace(req.OverrideReason) == "" {
		return nil, &models.ValidationError{Reason: "overrideReason is required"}
	}

	now := s.Now()
	if req.OverrideExpiresAt != nil && !req.OverrideExpiresAt.After(now) {
		return nil, &models.ValidationError{Reason: "overrideExpiresAt must be in the future"}
	}

	// Friendly pre-check; the store's unique constraint is the real guard
	existing, err := s.Store.GetActive(ctx, req.TargetUserID, req.ActionType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("an active %s override already exists for user %s; revert it or wait for it to expire", req.ActionType, req.TargetUserID),
		}
	}

	handler, err := s.Registry.Resolve(req.ActionType)
	if err != nil {
		return nil, &models.ValidationError{Reason: err.Error()}
	}

	hctx, cancel := context.WithTimeout(ctx, s.HandlerTimeout)
	defer cancel()

	previousState, err := handler.Capture(hctx, req.TargetUserID)
	if err != nil {
		return nil, &models.HandlerError{ActionType: req.ActionType, Op: "capture", Err: err}
	}
	newState, err := handler.Apply(hctx, req.TargetUserID)
	if err != nil {
		return nil, &models.HandlerError{ActionType: req.ActionType, Op: "apply", Err: err}
	}

	o := &models.Override{
		TargetUserID:      req.TargetUserID,
		AdminActorID:      actorID,
		ActionType:        req.ActionType,
		OverrideReason:    req.OverrideReason,
		Status:            models.StatusActive,
		OverrideExpiresAt: req.OverrideExpiresAt,
		PreviousState:     &previousState,
		NewState:          &newState,
		CreatedAt:         now,
	}

	if err := s.Store.Create(ctx, o); err != nil {
		// Lost the store race after mutating external state. Handlers are
		// idempotent, so putting the snapshot back cannot disturb the winner.
		if _, ok := asConflict(err); ok {
			if _, rerr := handler.Restore(hctx, req.TargetUserID, previousState); rerr != nil {
				log.Printf("[Override] rollback after lost apply race failed for user %s (%s): %v",
					req.TargetUserID, req.ActionType, rerr)
			}
		}
		return nil, err
	}

	metrics.OverridesApplied.WithLabelValues(string(o.ActionType)).Inc()
	cache.InvalidateOverrideCaches(ctx)

	s.recordTransition(ctx, o, "apply", actorID, req.OverrideReason)

	return o, nil
}

// Revert transitions an active override to reverted, restoring the state
// captured at apply time. A failed Restore leaves the override active so a
// retry is safe.
func (s *OverrideService) Revert(ctx context.Context, overrideID, reason, actorID string) (*models.Override, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &models.ValidationError{Reason: "reason is required"}
	}

	o, err := s.Store.GetByID(ctx, overrideID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.StatusActive {
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("override %s is already %s and cannot be reverted", overrideID, o.Status),
		}
	}

	if err := s.restore(ctx, o); err != nil {
		return nil, err
	}

	updated, err := s.Store.MarkReverted(ctx, overrideID, actorID, reason, s.Now())
	if err != nil {
		// Lost the race against a concurrent revert or the sweep; the winner
		// already restored and audited.
		return nil, err
	}

	metrics.OverridesReverted.WithLabelValues(string(updated.ActionType)).Inc()
	cache.InvalidateOverrideCaches(ctx)

	s.recordTransition(ctx, updated, "revert", actorID, reason)

	return updated, nil
}

// Expire transitions an active override to expired on behalf of the sweep,
// attributed to the system actor. Same restore-then-mark machinery as
// Revert; a lost race yields ConflictError with no audit entry.
func (s *OverrideService) Expire(ctx context.Context, o *models.Override) (*models.Override, error) {
	if o.Status != models.StatusActive {
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("override %s is already %s", o.ID, o.Status),
		}
	}

	if err := s.restore(ctx, o); err != nil {
		return nil, err
	}

	updated, err := s.Store.MarkExpired(ctx, o.ID, ExpiredReason, s.Now())
	if err != nil {
		return nil, err
	}

	metrics.OverridesExpired.WithLabelValues(string(updated.ActionType)).Inc()
	cache.InvalidateOverrideCaches(ctx)

	s.recordTransition(ctx, updated, "expire", SystemActorID, ExpiredReason)

	return updated, nil
}

// restore invokes the handler's Restore with the snapshot captured at apply
// time, under the bounded handler timeout.
func (s *OverrideService) restore(ctx context.Context, o *models.Override) error {
	handler, err := s.Registry.Resolve(o.ActionType)
	if err != nil {
		return &models.HandlerError{ActionType: o.ActionType, Op: "restore", Err: err}
	}

	previousState := ""
	if o.PreviousState != nil {
		previousState = *o.PreviousState
	}

	hctx, cancel := context.WithTimeout(ctx, s.HandlerTimeout)
	defer cancel()

	if _, err := handler.Restore(hctx, o.TargetUserID, previousState); err != nil {
		return &models.HandlerError{ActionType: o.ActionType, Op: "restore", Err: err}
	}
	return nil
}

// recordTransition writes the one audit entry this transition produces
func (s *OverrideService) recordTransition(ctx context.Context, o *models.Override, event, actorID, reason string) {
	metadata := buildMetadata(event, o)
	entry := &models.AuditLogEntry{
		OverrideID:     &o.ID,
		AdminActorID:   actorID,
		AffectedUserID: o.TargetUserID,
		ActionType:     o.ActionType,
		OverrideReason: reason,
		PreviousState:  o.PreviousState,
		NewState:       o.NewState,
		Metadata:       &metadata,
	}
	// The transition is already durable; a failed audit write is counted
	// and logged inside Record.
	_ = s.Audit.Record(ctx, entry)
}

func buildMetadata(event string, o *models.Override) string {
	m := map[string]interface{}{
		"event":  event,
		"status": o.Status,
	}
	if o.OverrideExpiresAt != nil {
		m["overrideExpiresAt"] = o.OverrideExpiresAt.Format(time.RFC3339)
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func asConflict(err error) (*models.ConflictError, bool) {
	var conflict *models.ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
