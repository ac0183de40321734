// Package metrics exposes Prometheus collectors for the ledger, the voucher
// engine and the RPC edge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ledger metrics
	PointsEarnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poinku_points_earned_total",
			Help: "Total number of points credited to members",
		},
	)

	PointsRedeemedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poinku_points_redeemed_total",
			Help: "Total number of points debited from members",
		},
	)

	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poinku_ledger_operations_total",
			Help: "Ledger operations by kind and outcome reason",
		},
		[]string{"kind", "result"}, // result: ok, insufficient_balance, conflict, ...
	)

	ReconcileMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poinku_reconcile_mismatch_total",
			Help: "Reconciliations where the cached balance differed from the journal",
		},
	)

	// Voucher metrics
	VouchersIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poinku_vouchers_issued_total",
			Help: "Total number of vouchers issued",
		},
	)

	VoucherTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poinku_voucher_transitions_total",
			Help: "Voucher redeem/expire attempts by action and outcome reason",
		},
		[]string{"action", "result"},
	)

	VoucherCodeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poinku_voucher_code_collisions_total",
			Help: "Generated voucher codes rejected because they already existed",
		},
	)

	// RPC metrics
	RPCDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poinku_rpc_duration_seconds",
			Help:    "Duration of RPC calls by procedure and code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure", "code"},
	)

	// Live update metrics
	EventClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poinku_event_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

// Result returns the label used for an operation outcome.
func Result(reason string) string {
	if reason == "" {
		return "ok"
	}
	return reason
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
