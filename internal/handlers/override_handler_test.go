package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zibana-backend/internal/middleware"
	"zibana-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrchestrator struct {
	applyResult  *models.Override
	applyErr     error
	revertResult *models.Override
	revertErr    error

	lastActorID    string
	lastOverrideID string
	lastReason     string
}

func (f *fakeOrchestrator) Apply(ctx context.Context, req *models.ApplyOverrideRequest, actorID string) (*models.Override, error) {
	f.lastActorID = actorID
	return f.applyResult, f.applyErr
}

func (f *fakeOrchestrator) Revert(ctx context.Context, overrideID, reason, actorID string) (*models.Override, error) {
	f.lastActorID = actorID
	f.lastOverrideID = overrideID
	f.lastReason = reason
	return f.revertResult, f.revertErr
}

type fakeQueries struct {
	active     []*models.Override
	activeErr  error
	byTarget   []*models.Override
	auditLog   []*models.AuditLogEntry
	lastFilter models.AuditLogFilter
}

func (f *fakeQueries) ListActive(ctx context.Context) ([]*models.Override, error) {
	return f.active, f.activeErr
}

func (f *fakeQueries) ListForTarget(ctx context.Context, targetUserID string) ([]*models.Override, error) {
	return f.byTarget, nil
}

func (f *fakeQueries) ListAuditLog(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLogEntry, error) {
	f.lastFilter = filter
	return f.auditLog, nil
}

func (f *fakeQueries) ActionTypes() []models.ActionTypeInfo {
	return models.AllActionTypes()
}

func sampleOverride() *models.Override {
	return &models.Override{
		ID:           "ov-1",
		TargetUserID: "user-42",
		AdminActorID: "admin-7",
		ActionType:   models.ActionForceLogout,
		Status:       models.StatusActive,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func authedRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(middleware.WithActor(r.Context(), "admin-7"))
}

func TestApplyOverride(t *testing.T) {
	orch := &fakeOrchestrator{applyResult: sampleOverride()}
	h := NewOverrideHandler(orch, &fakeQueries{})

	body := `{"targetUserId":"user-42","actionType":"FORCE_LOGOUT","overrideReason":"Account takeover report"}`
	w := httptest.NewRecorder()
	h.ApplyOverride(w, authedRequest(http.MethodPost, "/api/admin/override/apply", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-7", orch.lastActorID)

	var got models.Override
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ov-1", got.ID)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestApplyOverrideRequiresActor(t *testing.T) {
	h := NewOverrideHandler(&fakeOrchestrator{}, &fakeQueries{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/override/apply", strings.NewReader(`{}`))
	h.ApplyOverride(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplyOverrideRejectsMalformedBody(t *testing.T) {
	h := NewOverrideHandler(&fakeOrchestrator{}, &fakeQueries{})

	w := httptest.NewRecorder()
	h.ApplyOverride(w, authedRequest(http.MethodPost, "/api/admin/override/apply", `{not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &models.ValidationError{Reason: "overrideReason is required"}, http.StatusBadRequest},
		{"conflict", &models.ConflictError{Reason: "an active override already exists"}, http.StatusConflict},
		{"not found", &models.NotFoundError{OverrideID: "ov-x"}, http.StatusNotFound},
		{"handler failure", &models.HandlerError{ActionType: models.ActionForceLogout, Op: "apply", Err: fmt.Errorf("backend down")}, http.StatusBadGateway},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orch := &fakeOrchestrator{applyErr: tc.err}
			h := NewOverrideHandler(orch, &fakeQueries{})

			body := `{"targetUserId":"user-42","actionType":"FORCE_LOGOUT","overrideReason":"x"}`
			w := httptest.NewRecorder()
			h.ApplyOverride(w, authedRequest(http.MethodPost, "/api/admin/override/apply", body))

			assert.Equal(t, tc.want, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRevertOverride(t *testing.T) {
	reverted := sampleOverride()
	reverted.Status = models.StatusReverted
	orch := &fakeOrchestrator{revertResult: reverted}
	h := NewOverrideHandler(orch, &fakeQueries{})

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/admin/override/ov-1/revert", `{"reason":"Issue resolved"}`)
	r = mux.SetURLVars(r, map[string]string{"id": "ov-1"})
	h.RevertOverride(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ov-1", orch.lastOverrideID)
	assert.Equal(t, "Issue resolved", orch.lastReason)
	assert.Equal(t, "admin-7", orch.lastActorID)

	var got models.Override
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusReverted, got.Status)
}

func TestListActive(t *testing.T) {
	q := &fakeQueries{active: []*models.Override{sampleOverride()}}
	h := NewOverrideHandler(&fakeOrchestrator{}, q)

	w := httptest.NewRecorder()
	h.ListActive(w, httptest.NewRequest(http.MethodGet, "/api/admin/overrides/active", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []*models.Override
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ov-1", got[0].ID)
}

func TestListAuditLogFilterParsing(t *testing.T) {
	q := &fakeQueries{}
	h := NewOverrideHandler(&fakeOrchestrator{}, q)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet,
		"/api/admin/overrides/audit-log?actor=admin-7&user=user-42&from=2026-08-01&to=2026-08-02T15:04:05Z", nil)
	h.ListAuditLog(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-7", q.lastFilter.AdminActorID)
	assert.Equal(t, "user-42", q.lastFilter.AffectedUserID)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), q.lastFilter.From)
	assert.Equal(t, time.Date(2026, 8, 2, 15, 4, 5, 0, time.UTC), q.lastFilter.To)
}

func TestListAuditLogRejectsBadTimestamp(t *testing.T) {
	h := NewOverrideHandler(&fakeOrchestrator{}, &fakeQueries{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/admin/overrides/audit-log?from=yesterday", nil)
	h.ListAuditLog(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListActionTypes(t *testing.T) {
	h := NewOverrideHandler(&fakeOrchestrator{}, &fakeQueries{})

	w := httptest.NewRecorder()
	h.ListActionTypes(w, httptest.NewRequest(http.MethodGet, "/api/admin/overrides/action-types", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.ActionTypeInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 9)
	assert.Equal(t, models.ActionForceLogout, got[0].Value)
	assert.Equal(t, "Force Logout", got[0].Label)
}
