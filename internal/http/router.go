package http

import (
	"zibana-backend/internal/handlers"
	"zibana-backend/internal/middleware"
	"zibana-backend/internal/stream"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	overrideHandler *handlers.OverrideHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	monitoringHandler *handlers.MonitoringHandler,
	auditStream *stream.Hub,
	actorMiddleware *middleware.ActorMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Probes and metrics (no actor attribution)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Admin override engine - every route needs an attributable actor
	adminAPI := r.PathPrefix("/api/admin").Subrouter()
	adminAPI.Use(actorMiddleware.Attribute)

	adminAPI.HandleFunc("/override/apply", overrideHandler.ApplyOverride).Methods("POST")
	adminAPI.HandleFunc("/override/{id}/revert", overrideHandler.RevertOverride).Methods("POST")

	adminAPI.HandleFunc("/overrides/active", overrideHandler.ListActive).Methods("GET")
	adminAPI.HandleFunc("/overrides/user/{targetUserId}", overrideHandler.ListForUser).Methods("GET")
	adminAPI.HandleFunc("/overrides/audit-log", overrideHandler.ListAuditLog).Methods("GET")
	adminAPI.HandleFunc("/overrides/audit-log/report", reportHandler.AuditLogReport).Methods("GET")
	adminAPI.HandleFunc("/overrides/audit-log/stream", auditStream.HandleWS).Methods("GET")
	adminAPI.HandleFunc("/overrides/action-types", overrideHandler.ListActionTypes).Methods("GET")

	// System monitoring
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(actorMiddleware.Attribute)
	monitoringAPI.HandleFunc("/system", monitoringHandler.SystemStats).Methods("GET")

	return r
}
