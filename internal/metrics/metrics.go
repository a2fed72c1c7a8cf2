package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentshop_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rentshop_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReturnsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentshop_returns_processed_total",
			Help: "Return batches processed, by resolved order status",
		},
		[]string{"status"},
	)

	DepositRefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentshop_deposit_refunds_total",
			Help: "Security deposit refunds recorded",
		},
	)

	OutstandingCollectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentshop_outstanding_collections_total",
			Help: "Outstanding amount collections recorded",
		},
	)

	StatusFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentshop_status_fallbacks_total",
			Help: "Times a resolved status was rejected by a check constraint and downgraded",
		},
	)

	OrderConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentshop_order_conflicts_total",
			Help: "Order writes rejected by the optimistic version check",
		},
	)
)
