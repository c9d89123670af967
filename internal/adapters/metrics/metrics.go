package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the event bridge and notification fanout
var (
	BridgeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jansankalp_bridge_events_total",
			Help: "Inbound classifier events by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	BridgeEventDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jansankalp_bridge_event_duration_seconds",
			Help:    "Time from fetch to commit for one inbound event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	BridgeWorkerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jansankalp_bridge_worker_state",
			Help: "1 for the state each bridge worker is currently in",
		},
		[]string{"worker", "state"},
	)

	FanoutJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jansankalp_fanout_jobs_total",
			Help: "Background fanout jobs by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	FanoutQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jansankalp_fanout_queue_depth",
			Help: "Jobs waiting in the fanout queue",
		},
	)

	OutboxPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jansankalp_outbox_records_total",
			Help: "Outbox records by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	EventDedupPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jansankalp_event_dedup_purged_total",
			Help: "Expired event markers deleted by the sweeper",
		},
	)
)

var registerOnce sync.Once

// Register registers all metrics with reg once per process.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			BridgeEventsTotal,
			BridgeEventDuration,
			BridgeWorkerState,
			FanoutJobsTotal,
			FanoutQueueDepth,
			OutboxPublishedTotal,
			EventDedupPurgedTotal,
		)
	})
}
