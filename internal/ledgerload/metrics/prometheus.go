package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "ledgerload"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type collectors struct {
	taskRequests   *prometheus.CounterVec
	taskLatency    *prometheus.HistogramVec
	activeUsers    prometheus.Gauge
	streamMessages prometheus.Counter
}

func newCollectors(reg prometheus.Registerer) *collectors {
	factory := promauto.With(reg)
	return &collectors{
		taskRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_requests_total",
			Help:      "Task executions by task name and outcome",
		}, []string{"task", "outcome"}),
		taskLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_latency_seconds",
			Help:      "Task execution latency",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"task"}),
		activeUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_users",
			Help:      "Simulated users currently running",
		}),
		streamMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_stream_messages_total",
			Help:      "Messages received from the ledger result stream",
		}),
	}
}
