// Package metrics exposes store and lifecycle activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swingset"

// Recorder implements domain.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	persist     *prometheus.HistogramVec
	size        prometheus.Gauge
	maintenance *prometheus.CounterVec
	autoSaves   *prometheus.CounterVec
}

var _ domain.Recorder = (*Recorder)(nil)

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store operations by name and outcome.",
		}, []string{"op", "outcome"}),
		persist: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_write_seconds",
			Help:      "Duration of full-collection storage writes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"outcome"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playgrounds",
			Help:      "Playgrounds currently held in memory.",
		}),
		maintenance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_runs_total",
			Help:      "Maintenance passes by outcome.",
		}, []string{"outcome"}),
		autoSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_ticks_total",
			Help:      "Auto-save ticks by result (flushed, skipped, error).",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.mutations,
		r.persist,
		r.size,
		r.maintenance,
		r.autoSaves,
		collectors.NewGoCollector(),
	)
	return r
}

// Registry returns the registry backing the recorder
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveMutation(op string, err error) {
	r.mutations.WithLabelValues(op, outcome(err)).Inc()
}

func (r *Recorder) ObservePersist(d time.Duration, err error) {
	r.persist.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (r *Recorder) SetCollectionSize(n int) {
	r.size.Set(float64(n))
}

func (r *Recorder) ObserveMaintenance(err error) {
	r.maintenance.WithLabelValues(outcome(err)).Inc()
}

func (r *Recorder) ObserveAutoSave(flushed bool, err error) {
	result := "skipped"
	switch {
	case err != nil:
		result = "error"
	case flushed:
		result = "flushed"
	}
	r.autoSaves.WithLabelValues(result).Inc()
}

// outcome labels an error by kind ("ok" when nil)
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
