package services

import (
	"context"
	"encoding/json"
	"time"

	"zibana-backend/internal/cache"
	"zibana-backend/internal/models"
)

// AuditLister is the read surface over the audit trail
type AuditLister interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLogEntry, error)
}

// QueryService is the read-only surface: active overrides, per-target
// history, and the global audit log. None of these mutate state; all are
// safe under arbitrary concurrency. The active listing is served from a
// short-TTL Redis cache invalidated on every transition.
type QueryService struct {
	Overrides OverrideStore
	Audit     AuditLister
}

func NewQueryService(overrides OverrideStore, audit AuditLister) *QueryService {
	return &QueryService{Overrides: overrides, Audit: audit}
}

// ListActive returns all active overrides, newest first
func (s *QueryService) ListActive(ctx context.Context) ([]*models.Override, error) {
	if data, ok := cache.GetCached(ctx, cache.ActiveOverridesKey); ok {
		var cached []*models.Override
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	overrides, err := s.Overrides.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(overrides); err == nil {
		cache.SetCached(ctx, cache.ActiveOverridesKey, data, 30*time.Second)
	}

	return overrides, nil
}

// ListForTarget returns one target's full override history, newest first
func (s *QueryService) ListForTarget(ctx context.Context, targetUserID string) ([]*models.Override, error) {
	return s.Overrides.ListByTarget(ctx, targetUserID)
}

// ListAuditLog returns audit entries newest first, optionally filtered
func (s *QueryService) ListAuditLog(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLogEntry, error) {
	return s.Audit.List(ctx, filter)
}

// ActionTypes returns the closed action type set for UI consumption
func (s *QueryService) ActionTypes() []models.ActionTypeInfo {
	return models.AllActionTypes()
}
