// Copyright 2025 Certen Protocol
//
// Prometheus instrumentation for the engine. Collectors always record;
// cmd/ledger serves Handler on /metrics only when
// config.Config.Metrics.Enabled is set. Grounded on the registration/handler
// pattern used across the example corpus's own pkg/metrics packages.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the ledger's Prometheus collectors. It is a single
// package-level registry, kept separate from Prometheus's global default
// registry.
var Registry = prometheus.NewRegistry()

var (
	appendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: "engine",
			Name:      "appends_total",
			Help:      "Total number of Append calls grouped by module and outcome.",
		},
		[]string{"module", "outcome"},
	)

	appendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Subsystem: "engine",
			Name:      "append_duration_seconds",
			Help:      "Duration of Append calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"module"},
	)

	verifyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: "engine",
			Name:      "verify_failures_total",
			Help:      "Total number of VerifyChain calls that found a corrupted chain, by reason.",
		},
		[]string{"reason"},
	)

	aclChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: "acl",
			Name:      "checks_total",
			Help:      "Total number of ACL Check calls grouped by allowed/denied.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		appendsTotal,
		appendDuration,
		verifyFailuresTotal,
		aclChecksTotal,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordAppend records the outcome and latency of one Append call.
func RecordAppend(module string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	appendsTotal.WithLabelValues(module, outcome).Inc()
	appendDuration.WithLabelValues(module).Observe(d.Seconds())
}

// RecordVerifyFailure records one VerifyChain failure by reason
// ("hash_mismatch", "prev_hash_mismatch", etc; see engine.VerifyChain).
func RecordVerifyFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	verifyFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordACLCheck records the result of one ACL Check call.
func RecordACLCheck(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	aclChecksTotal.WithLabelValues(result).Inc()
}
