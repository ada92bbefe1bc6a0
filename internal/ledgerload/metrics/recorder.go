package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultMaxErrors = 10

type taskStats struct {
	count     int
	failures  int
	latencies []time.Duration
	errors    []string
}

// Recorder collects task outcomes into Prometheus collectors and into in-memory per-task stats
// used to build the end-of-run report. It is safe for concurrent use.
type Recorder struct {
	prom      *collectors
	maxErrors int

	mu    sync.Mutex
	tasks map[string]*taskStats
	start time.Time
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		prom:      newCollectors(reg),
		maxErrors: defaultMaxErrors,
		tasks:     map[string]*taskStats{},
		start:     time.Now(),
	}
}

// SetMaxErrors sets how many recent error messages are kept per task.
func (r *Recorder) SetMaxErrors(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxErrors = n
}

func (r *Recorder) Record(task string, latency time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.prom.taskRequests.WithLabelValues(task, outcome).Inc()
	r.prom.taskLatency.WithLabelValues(task).Observe(latency.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.tasks[task]
	if !ok {
		s = &taskStats{}
		r.tasks[task] = s
	}
	s.count++
	s.latencies = append(s.latencies, latency)
	if err != nil {
		s.failures++
		if r.maxErrors > 0 {
			s.errors = append(s.errors, err.Error())
			if len(s.errors) > r.maxErrors {
				s.errors = s.errors[len(s.errors)-r.maxErrors:]
			}
		}
	}
}

func (r *Recorder) UserStarted() { r.prom.activeUsers.Inc() }
func (r *Recorder) UserStopped() { r.prom.activeUsers.Dec() }

func (r *Recorder) StreamMessage() { r.prom.streamMessages.Inc() }

// Reset drops the in-memory stats and restarts the clock rates are computed against. Prometheus
// counters are left alone.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = map[string]*taskStats{}
	r.start = time.Now()
}

type TaskReport struct {
	Task           string        `json:"task"`
	TotalExecuted  int           `json:"totalExecuted"`
	TotalFailed    int           `json:"totalFailed"`
	RequestsPerSec float64       `json:"requestsPerSecond"`
	P50Latency     time.Duration `json:"p50Latency"`
	P95Latency     time.Duration `json:"p95Latency"`
	P99Latency     time.Duration `json:"p99Latency"`
	MaxLatency     time.Duration `json:"maxLatency"`
	AverageLatency time.Duration `json:"averageLatency"`
	RecentErrors   []string      `json:"recentErrors,omitempty"`
}

type Report struct {
	// Elapsed is the load window the rates are computed over.
	Elapsed       time.Duration `json:"elapsed"`
	TotalExecuted int           `json:"totalExecuted"`
	TotalFailed   int           `json:"totalFailed"`
	Tasks         []TaskReport  `json:"tasks"`
}

type taskSnapshot struct {
	name      string
	count     int
	failures  int
	latencies []time.Duration
	errors    []string
}

// snapshot copies the stats so that the report can be built without holding mu.
func (r *Recorder) snapshot() ([]taskSnapshot, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]taskSnapshot, 0, len(r.tasks))
	for name, s := range r.tasks {
		out = append(out, taskSnapshot{
			name:      name,
			count:     s.count,
			failures:  s.failures,
			latencies: append([]time.Duration(nil), s.latencies...),
			errors:    append([]string(nil), s.errors...),
		})
	}
	return out, time.Since(r.start)
}

// GenerateReport summarises everything recorded since construction or the last Reset. Tasks are
// sorted by name.
func (r *Recorder) GenerateReport() Report {
	tasks, elapsed := r.snapshot()
	report := Report{Elapsed: elapsed, Tasks: make([]TaskReport, 0, len(tasks))}
	for _, s := range tasks {
		tr := TaskReport{
			Task:          s.name,
			TotalExecuted: s.count,
			TotalFailed:   s.failures,
			RecentErrors:  s.errors,
		}
		if elapsed > 0 {
			tr.RequestsPerSec = float64(s.count) / elapsed.Seconds()
		}
		if len(s.latencies) > 0 {
			sorted := s.latencies
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			var total time.Duration
			for _, l := range sorted {
				total += l
			}
			tr.P50Latency = percentile(sorted, 0.50)
			tr.P95Latency = percentile(sorted, 0.95)
			tr.P99Latency = percentile(sorted, 0.99)
			tr.MaxLatency = sorted[len(sorted)-1]
			tr.AverageLatency = total / time.Duration(len(sorted))
		}
		report.TotalExecuted += s.count
		report.TotalFailed += s.failures
		report.Tasks = append(report.Tasks, tr)
	}
	sort.Slice(report.Tasks, func(i, j int) bool { return report.Tasks[i].Task < report.Tasks[j].Task })
	return report
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
