package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "canvas"

// Collector holds all Prometheus metrics for the canvas engine
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Interaction metrics
	DragUpdates   *prometheus.CounterVec
	FramesFlushed prometheus.Counter
	EdgesChanged  *prometheus.CounterVec
	ViewportOps   *prometheus.CounterVec
	Rejections    *prometheus.CounterVec

	// Layout metrics
	LayoutRuns     *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		DragUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "drag_updates_total",
				Help:      "Drag frames by outcome",
			},
			[]string{"result"},
		),
		FramesFlushed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "frames_flushed_total",
				Help:      "Animation frames that applied pending drag input",
			},
		),
		EdgesChanged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "edges_changed_total",
				Help:      "Links added or removed",
			},
			[]string{"op"},
		),
		ViewportOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "viewport_ops_total",
				Help:      "Zoom, pan, center and fit commands",
			},
			[]string{"op"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejections_total",
				Help:      "Operations refused as no-ops, by reason",
			},
			[]string{"reason"},
		),
		LayoutRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "layout_runs_total",
				Help:      "Layout computations by kind",
			},
			[]string{"kind"},
		),
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "layout_duration_seconds",
				Help:      "Layout computation time in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.DragUpdates,
		c.FramesFlushed,
		c.EdgesChanged,
		c.ViewportOps,
		c.Rejections,
		c.LayoutRuns,
		c.LayoutDuration,
	)

	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordDrag counts one drag frame outcome
func (c *Collector) RecordDrag(result string) {
	if c == nil {
		return
	}
	c.DragUpdates.WithLabelValues(result).Inc()
}

// RecordFrame counts one flushed frame
func (c *Collector) RecordFrame() {
	if c == nil {
		return
	}
	c.FramesFlushed.Inc()
}

// RecordEdge counts a link change; op is "connect" or "disconnect"
func (c *Collector) RecordEdge(op string) {
	if c == nil {
		return
	}
	c.EdgesChanged.WithLabelValues(op).Inc()
}

// RecordViewport counts a viewport command
func (c *Collector) RecordViewport(op string) {
	if c == nil {
		return
	}
	c.ViewportOps.WithLabelValues(op).Inc()
}

// RecordRejection counts an operation refused as a no-op
func (c *Collector) RecordRejection(reason string) {
	if c == nil {
		return
	}
	c.Rejections.WithLabelValues(reason).Inc()
}

// RecordLayout counts a layout run and observes its duration
func (c *Collector) RecordLayout(kind string, nodes int, d time.Duration) {
	if c == nil {
		return
	}
	c.LayoutRuns.WithLabelValues(kind).Inc()
	c.LayoutDuration.WithLabelValues(kind).Observe(d.Seconds())
}
