package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// PrometheusHook implements logrus.Hook, counting log lines by level.
type PrometheusHook struct {
	counters map[logrus.Level]prometheus.Counter
}

// NewPrometheusHook creates Prometheus counters for each level and registers them with the given registerer.
func NewPrometheusHook(registerer prometheus.Registerer) *PrometheusHook {
	counters := make(map[logrus.Level]prometheus.Counter)
	for _, level := range []logrus.Level{
		logrus.DebugLevel,
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
	} {
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "log_messages",
			Help: "Total number of log lines logged by level",
			ConstLabels: prometheus.Labels{
				"level": level.String(),
			},
		})
		registerer.MustRegister(counter)
		counters[level] = counter
	}
	return &PrometheusHook{counters: counters}
}

func (h *PrometheusHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *PrometheusHook) Fire(entry *logrus.Entry) error {
	if counter, ok := h.counters[entry.Level]; ok {
		counter.Inc()
	}
	return nil
}
