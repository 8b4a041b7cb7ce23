// Package metrics defines and registers all custom Prometheus metrics for the
// bulk shipping API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shipping"

// ── Ingestion metrics ─────────────────────────────────────────────────────────

// BatchesIngestedTotal counts batches that completed ingestion.
// Label:
//   - status: the settled batch status ("PENDING" or "FAILED")
var BatchesIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_ingested_total",
		Help:      "Total number of bulk uploads ingested, by settled batch status.",
	},
	[]string{"status"},
)

// BatchesRejectedTotal counts uploads rejected wholesale before a batch was created.
// Label:
//   - reason: "malformed_input", "batch_too_small" or "pickup_location"
var BatchesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_rejected_total",
		Help:      "Total number of bulk uploads rejected before any row was priced.",
	},
	[]string{"reason"},
)

// RowsProcessedTotal counts per-row outcomes.
// Label:
//   - outcome: "valid" or the rejection code (e.g. "out_of_service_area")
var RowsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_processed_total",
		Help:      "Total number of upload rows processed, by outcome.",
	},
	[]string{"outcome"},
)

// IngestDuration measures one ingestion run from upload to persisted batch.
var IngestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Duration of bulk ingestion runs.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"status"},
)

// ── Distance metrics ──────────────────────────────────────────────────────────

// DistanceLookupsTotal counts distance provider calls.
// Label:
//   - result: "ok", "error", "timeout" or "invalid"
var DistanceLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distance_lookups_total",
		Help:      "Total number of distance lookups, by result.",
	},
	[]string{"result"},
)

// DistanceCacheTotal counts distance cache decisions ("hit" / "miss").
var DistanceCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distance_cache_total",
		Help:      "Total number of distance cache checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// DistanceLookupDuration measures distance provider latency.
var DistanceLookupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "distance_lookup_duration_seconds",
		Help:      "Duration of distance provider calls.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Payment & status metrics ─────────────────────────────────────────────────

// PaymentsTotal counts payment confirmations.
// Label:
//   - result: "confirmed", "already_paid", "no_priceable_items", "rejected"
var PaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Total number of payment confirmations, by result.",
	},
	[]string{"result"},
)

// StatusUpdatesTotal counts parcels moved through fulfillment.
// Labels:
//   - subject: "item" or "shipment"
//   - status: the target fulfillment status
var StatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_updates_total",
		Help:      "Total number of parcels moved to a new fulfillment status.",
	},
	[]string{"subject", "status"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts status events delivered downstream.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of status events published, by subject.",
	},
	[]string{"subject"},
)

// EventsErrorsTotal counts status events that could not be published.
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of status events that failed to publish, by subject.",
	},
	[]string{"subject"},
)

// EventsQueueDepth tracks the number of events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Shipment metrics ──────────────────────────────────────────────────────────

// ShipmentsCreatedTotal counts single shipments booked, by speed tier.
var ShipmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Total number of single shipments created, by speed tier.",
	},
	[]string{"speed"},
)

// QuotesTotal counts single-parcel quotes served, by speed tier.
var QuotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Total number of single-parcel quotes served, by speed tier.",
	},
	[]string{"speed"},
)
