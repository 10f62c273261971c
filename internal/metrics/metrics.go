package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ConflictRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flightbooking",
			Subsystem: "store",
			Name:      "conflict_retries_total",
			Help:      "Counter of operations re-run after a serialization conflict.",
		}, []string{"operation"})

	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flightbooking",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Counter of engine operations by outcome.",
		}, []string{"operation", "outcome"})

	DanglingTransactions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flightbooking",
			Subsystem: "store",
			Name:      "dangling_transactions_total",
			Help:      "Counter of sessions halted because a transaction was left open.",
		})
)

func init() {
	prometheus.MustRegister(ConflictRetries)
	prometheus.MustRegister(Operations)
	prometheus.MustRegister(DanglingTransactions)
}
