package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Committed ledger operations",
		},
		[]string{"type"}, // deposit|withdrawal|transfer
	)
	TransactionsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_transactions_failed_total",
			Help: "Rejected or rolled back ledger operations",
		},
	)

	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered to the sink",
		},
	)
	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Notification deliveries that failed",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

func Init() {
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(TransactionsFailed)
	prometheus.MustRegister(NotificationsSent)
	prometheus.MustRegister(NotificationsFailed)
	prometheus.MustRegister(WorkerQueueDepth)
}
