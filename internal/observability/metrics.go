// README: Prometheus collectors for HTTP traffic, fare quotes and ledger events.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autometer"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	FareQuotesTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "fare_quotes_total", Help: "Fare quotes computed"})
	FareConfigWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "fare_config_writes_total", Help: "Fare config writes by kind"},
		[]string{"kind"}, // default | update
	)
	FareCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "fare_cache_results_total", Help: "Fare config cache lookups by result"},
		[]string{"result"}, // hit | miss | error | stale
	)

	RideOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ride_outcomes_total", Help: "Ride outcomes applied to driver ledgers"},
		[]string{"outcome"},
	)
	LedgerResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ledger_resolutions_total", Help: "Ledger lookups by the tier that matched"},
		[]string{"tier"}, // ledger_id | account_ref | synthesized
	)
	RideEarningsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "ride_earnings_total", Help: "Sum of ride earnings recorded"})
)
