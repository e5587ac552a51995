// Package metrics exposes Prometheus collectors for simulation activity.
package metrics

import (
	"net/http"

	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "business_case"

// Recorder tracks completed runs and session resets on its own registry.
type Recorder struct {
	registry  *prometheus.Registry
	runs      prometheus.Counter
	trials    prometheus.Counter
	nonFinite prometheus.Counter
	resets    prometheus.Counter
	duration  prometheus.Histogram
	stored    prometheus.Gauge
}

// NewRecorder registers the simulation collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed Monte Carlo runs.",
		}),
		trials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Trials evaluated across all runs.",
		}),
		nonFinite: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "non_finite_trials_total",
			Help:      "Trials whose savings fraction was NaN or infinite.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resets_total",
			Help:      "Times the run list was cleared.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time to evaluate one run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_runs",
			Help:      "Runs currently held for comparison.",
		}),
	}

	r.registry.MustRegister(
		r.runs, r.trials, r.nonFinite, r.resets, r.duration, r.stored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRun records a completed run and the resulting number of stored runs.
func (r *Recorder) ObserveRun(run montecarlo.Run, stored int) {
	r.runs.Inc()
	r.trials.Add(float64(run.Trials()))
	r.nonFinite.Add(float64(run.NonFinite()))
	r.duration.Observe(run.Duration.Seconds())
	r.stored.Set(float64(stored))
}

// ObserveReset records that the run list was cleared.
func (r *Recorder) ObserveReset() {
	r.resets.Inc()
	r.stored.Set(0)
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
