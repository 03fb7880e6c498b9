// Package jobmetrics instruments background job runs.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the worker collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	overdue  prometheus.Counter
	replayed prometheus.Counter
}

// NewMetrics builds the collectors and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railyard_jobs_runs_total",
			Help: "Job executions by job and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "railyard_jobs_duration_seconds",
			Help:    "Job execution time.",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		}, []string{"job"}),
		overdue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railyard_rfis_marked_overdue_total",
			Help: "RFIs moved to overdue by the sweep.",
		}),
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railyard_activity_replayed_total",
			Help: "Spooled activity entries written by the retry job.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.overdue, m.replayed)
	}
	return m
}

// Observe runs fn as one execution of job and records the outcome. The error
// from fn is returned unchanged.
func (m *Metrics) Observe(job string, fn func() error) error {
	start := time.Now()
	err := fn()
	if m == nil {
		return err
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(job, outcome).Inc()
	m.duration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	return err
}

// AddOverdue counts RFIs moved to overdue by a sweep.
func (m *Metrics) AddOverdue(count int) {
	if m != nil && count > 0 {
		m.overdue.Add(float64(count))
	}
}

// ActivityReplayed counts one spooled entry written by the retry job.
func (m *Metrics) ActivityReplayed() {
	if m != nil {
		m.replayed.Inc()
	}
}
