// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "broadway"

// Registry holds all dashboard metrics. A nil *Registry is valid and
// records nothing, so callers never need to check whether metrics are on.
type Registry struct {
	gatherer prometheus.Gatherer

	datasetRecords    prometheus.Gauge
	skippedRecords    prometheus.Counter
	loadFailures      prometheus.Counter
	selectionChanges  *prometheus.CounterVec
	renderDuration    *prometheus.HistogramVec
	httpRequestsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
// together with the Go and process collectors.
func New() (*Registry, error) {
	reg := prometheus.NewRegistry()
	r := &Registry{
		gatherer: reg,
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Number of valid attendance records currently loaded.",
		}),
		skippedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "skipped_records_total",
			Help:      "Number of dataset entries skipped as invalid.",
		}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "load_failures_total",
			Help:      "Number of failed dataset loads.",
		}),
		selectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "selection_changes_total",
			Help:      "Number of selection changes by selected option.",
		}, []string{"selection"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "render_duration_seconds",
			Help:      "Time spent aggregating and rendering a chart.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"renderer"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of incoming HTTP requests.",
		}, []string{"path", "method", "status"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.datasetRecords,
		r.skippedRecords,
		r.loadFailures,
		r.selectionChanges,
		r.renderDuration,
		r.httpRequestsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// DatasetLoaded records a successful load.
func (r *Registry) DatasetLoaded(records, skipped int) {
	if r == nil {
		return
	}
	r.datasetRecords.Set(float64(records))
	r.skippedRecords.Add(float64(skipped))
}

// DatasetLoadFailed records a failed load.
func (r *Registry) DatasetLoadFailed() {
	if r == nil {
		return
	}
	r.loadFailures.Inc()
}

// SelectionChanged counts a selection change.
func (r *Registry) SelectionChanged(selection string) {
	if r == nil {
		return
	}
	r.selectionChanges.WithLabelValues(selection).Inc()
}

// ObserveRender records how long renderer took since start.
func (r *Registry) ObserveRender(renderer string, start time.Time) {
	if r == nil {
		return
	}
	r.renderDuration.WithLabelValues(renderer).Observe(time.Since(start).Seconds())
}

// HTTPRequest counts a served request.
func (r *Registry) HTTPRequest(path, method, status string) {
	if r == nil {
		return
	}
	r.httpRequestsTotal.WithLabelValues(path, method, status).Inc()
}
