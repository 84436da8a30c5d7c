package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	OverridesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overrides_applied_total",
		Help: "Overrides applied, by action type",
	}, []string{"action_type"})

	OverridesReverted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overrides_reverted_total",
		Help: "Overrides manually reverted, by action type",
	}, []string{"action_type"})

	OverridesExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overrides_expired_total",
		Help: "Overrides auto-expired by the sweep, by action type",
	}, []string{"action_type"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "override_sweep_duration_seconds",
		Help:    "Duration of one expiry sweep pass",
		Buckets: prometheus.DefBuckets,
	})

	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "override_sweep_failures_total",
		Help: "Per-target handler failures during expiry sweeps",
	})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Audit log writes that failed after a committed transition",
	})
)
