// Package metrics exposes Prometheus counters for guest migrations,
// entitlement lookups and mail delivery.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
)

const namespace = "annoylog"

// Collector implements adapter.SyncMetrics on its own registry.
type Collector struct {
	registry         *prometheus.Registry
	migrations       *prometheus.CounterVec
	entitlementSyncs *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	mailAttempts     *prometheus.CounterVec
}

// NewCollector creates the counters and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guest_migrations_total",
			Help:      "Guest data migration attempts by outcome and block reason.",
		}, []string{"outcome", "reason"}),
		entitlementSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_syncs_total",
			Help:      "Entitlement syncs against the billing provider by derived status.",
		}, []string{"status", "degraded"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_cache_lookups_total",
			Help:      "Device entitlement cache lookups by result.",
		}, []string{"result"}),
		mailAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_delivery_attempts_total",
			Help:      "Outbound mail delivery attempts by kind and resulting state.",
		}, []string{"kind", "state"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.migrations,
		c.entitlementSyncs,
		c.cacheLookups,
		c.mailAttempts,
	)
	return c
}

var _ adapter.SyncMetrics = (*Collector)(nil)

// MigrationFinished counts one migration attempt.
func (c *Collector) MigrationFinished(outcome entity.MigrationOutcome, reason entity.MigrationBlockReason) {
	c.migrations.WithLabelValues(string(outcome), string(reason)).Inc()
}

// EntitlementSynced counts one sync.
func (c *Collector) EntitlementSynced(status entity.EntitlementStatus, degraded bool) {
	c.entitlementSyncs.WithLabelValues(string(status), strconv.FormatBool(degraded)).Inc()
}

// EntitlementCacheLookup counts a cache hit or miss.
func (c *Collector) EntitlementCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// MailAttempted counts one delivery attempt.
func (c *Collector) MailAttempted(kind entity.MailKind, state entity.MailState) {
	c.mailAttempts.WithLabelValues(string(kind), string(state)).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
