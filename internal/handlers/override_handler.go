package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"zibana-backend/internal/middleware"
	"zibana-backend/internal/models"
	"zibana-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// OverrideOrchestrator is the write surface of the override engine
type OverrideOrchestrator interface {
	Apply(ctx context.Context, req *models.ApplyOverrideRequest, actorID string) (*models.Override, error)
	Revert(ctx context.Context, overrideID, reason, actorID string) (*models.Override, error)
}

// OverrideQueries is the read surface of the override engine
type OverrideQueries interface {
	ListActive(ctx context.Context) ([]*models.Override, error)
	ListForTarget(ctx context.Context, targetUserID string) ([]*models.Override, error)
	ListAuditLog(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLogEntry, error)
	ActionTypes() []models.ActionTypeInfo
}

type OverrideHandler struct {
	Service OverrideOrchestrator
	Queries OverrideQueries
}

func NewOverrideHandler(service OverrideOrchestrator, queries OverrideQueries) *OverrideHandler {
	return &OverrideHandler{Service: service, Queries: queries}
}

// ApplyOverride applies a new override to a target user
func (h *OverrideHandler) ApplyOverride(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "acting admin identity missing")
		return
	}

	var req models.ApplyOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	override, err := h.Service.Apply(r.Context(), &req, actorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, override)
}

// RevertOverride reverts an active override, restoring the captured state
func (h *OverrideHandler) RevertOverride(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "acting admin identity missing")
		return
	}

	overrideID := mux.Vars(r)["id"]

	var req models.RevertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	override, err := h.Service.Revert(r.Context(), overrideID, req.Reason, actorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, override)
}

// ListActive returns all currently active overrides
func (h *OverrideHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.Queries.ListActive(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list active overrides")
		return
	}
	utils.JSON(w, http.StatusOK, overrides)
}

// ListForUser returns one user's full override history
func (h *OverrideHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	targetUserID := mux.Vars(r)["targetUserId"]

	overrides, err := h.Queries.ListForTarget(r.Context(), targetUserID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list user overrides")
		return
	}
	utils.JSON(w, http.StatusOK, overrides)
}

// ListAuditLog returns audit entries, optionally filtered by actor,
// affected user and date range.
func (h *OverrideHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Queries.ListAuditLog(r.Context(), filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list audit log")
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

// ListActionTypes returns the closed action type set with labels
func (h *OverrideHandler) ListActionTypes(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Queries.ActionTypes())
}

// parseAuditFilter reads actor/user/from/to query parameters. Timestamps
// accept RFC3339 or plain dates.
func parseAuditFilter(r *http.Request) (models.AuditLogFilter, error) {
	filter := models.AuditLogFilter{
		AdminActorID:   r.URL.Query().Get("actor"),
		AffectedUserID: r.URL.Query().Get("user"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := parseTimestamp(from)
		if err != nil {
			return filter, errors.New("invalid 'from' timestamp")
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := parseTimestamp(to)
		if err != nil {
			return filter, errors.New("invalid 'to' timestamp")
		}
		filter.To = t
	}

	return filter, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// writeServiceError maps the engine's error taxonomy onto HTTP statuses.
// Every failure names the violated invariant so operators can decide what
// to do next.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		conflictErr   *models.ConflictError
		notFoundErr   *models.NotFoundError
		handlerErr    *models.HandlerError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.RespondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &conflictErr):
		utils.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &notFoundErr):
		utils.RespondError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &handlerErr):
		utils.RespondError(w, http.StatusBadGateway, handlerErr.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
