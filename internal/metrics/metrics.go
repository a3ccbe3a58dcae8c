// Package metrics defines and registers all custom Prometheus metrics for
// the ISP admin back-office. It is the single source of truth for metric
// names, labels, and help strings; collectors register with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ispadmin"

// ── Storage metrics ───────────────────────────────────────────────────────────

// StorageOperationsTotal counts facade operations.
// Labels:
//   - op: "set", "get", "remove", "clear"
//   - outcome: "synced" (remote reached), "local_only" (remote skipped or
//     failed), "error" (local store failure)
var StorageOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_operations_total",
		Help:      "Total number of synchronized storage operations, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// RemoteFallbacksTotal counts operations that fell back to the local cache
// because the remote store was unreachable or timed out.
var RemoteFallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_remote_fallbacks_total",
		Help:      "Total number of operations that degraded to local-only because the remote store failed.",
	},
	[]string{"op"},
)

// RepairWritesTotal counts locally cached values written back to a
// confirmed-empty remote store.
var RepairWritesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_repair_writes_total",
		Help:      "Total number of repair writes promoting local data to an empty remote key.",
	},
)

// ChangeEventsTotal counts change notifications fanned out to subscribers.
// Label:
//   - origin: "local" or "remote"
var ChangeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_change_events_total",
		Help:      "Total number of change events published to storage subscribers, by origin.",
	},
	[]string{"origin"},
)

// ── Connection metrics ────────────────────────────────────────────────────────

// ConnectionChecksTotal counts connectivity probes that actually reached the
// remote store (throttled and coalesced calls are not counted).
// Label:
//   - result: "connected" or "disconnected"
var ConnectionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connection_checks_total",
		Help:      "Total number of remote connectivity probes, by result.",
	},
	[]string{"result"},
)

// ConnectionStatus is 1 while the remote store is believed reachable, 0
// otherwise.
var ConnectionStatus = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connection_status",
		Help:      "Current connectivity status towards the remote store (1 connected, 0 disconnected).",
	},
)

// ── Seeding metrics ───────────────────────────────────────────────────────────

// SeedRunsTotal counts default-data initialization attempts.
// Label:
//   - result: "seeded", "skipped", "error"
var SeedRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_runs_total",
		Help:      "Total number of default data initialization runs, by result.",
	},
	[]string{"result"},
)
