// Package prometheus exports observability hook events as Prometheus metrics.
package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/gutterview/pkg/observability"
)

var (
	_ observability.SolverHooks   = (*Collector)(nil)
	_ observability.PipelineHooks = (*Collector)(nil)
	_ observability.CacheHooks    = (*Collector)(nil)
	_ observability.HTTPHooks     = (*Collector)(nil)
)

// Collector implements every observability hook interface using Prometheus.
type Collector struct {
	batches       prometheus.Counter
	batchSteps    prometheus.Counter
	batchDuration prometheus.Histogram
	bestCost      prometheus.Gauge
	improvements  prometheus.Counter
	reseeds       prometheus.Counter
	workerErrors  prometheus.Counter

	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram
	routedEdges    prometheus.Counter
	fallbackTracks prometheus.Counter
	routeDuration  prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with reg.
// A nil reg registers with the default Prometheus registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		batches: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_solver_batches_total",
			Help: "Total number of annealing batches run",
		}),
		batchSteps: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_solver_steps_total",
			Help: "Total annealing steps over all chains",
		}),
		batchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gutterview_solver_batch_duration_seconds",
			Help:    "Wall time of one annealing batch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		bestCost: f.NewGauge(prometheus.GaugeOpts{
			Name: "gutterview_solver_best_cost",
			Help: "Most recent global best arrangement cost",
		}),
		improvements: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_solver_improvements_total",
			Help: "Total number of global best improvements",
		}),
		reseeds: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_solver_reseeds_total",
			Help: "Total number of chains restarted from the global best",
		}),
		workerErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_worker_errors_total",
			Help: "Total number of failed solve requests",
		}),
		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_layouts_total",
			Help: "Total number of column layouts computed",
		}, []string{"status"}),
		layoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gutterview_layout_duration_seconds",
			Help:    "Column layout duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		layoutNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gutterview_layout_nodes",
			Help:    "Number of tiles per layout",
			Buckets: prometheus.ExponentialBuckets(4, 4, 7),
		}),
		routedEdges: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_routed_edges_total",
			Help: "Total number of edges routed",
		}),
		fallbackTracks: f.NewCounter(prometheus.CounterOpts{
			Name: "gutterview_fallback_tracks_total",
			Help: "Total number of edges routed outside a free gutter interval",
		}),
		routeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gutterview_route_duration_seconds",
			Help:    "Edge routing duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_renders_total",
			Help: "Total number of render calls",
		}, []string{"status"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gutterview_render_duration_seconds",
			Help:    "Render duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"key_type"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_cache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"key_type"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_cache_written_bytes_total",
			Help: "Total bytes written to the cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gutterview_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gutterview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "gutterview_http_in_flight_requests",
			Help: "Number of HTTP requests being served",
		}),
	}
}

// Register installs c as the global solver, pipeline, cache and HTTP hooks.
func (c *Collector) Register() {
	observability.SetSolverHooks(c)
	observability.SetPipelineHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

// OnBatch records a completed batch.
func (c *Collector) OnBatch(_ context.Context, chains, steps int, duration time.Duration) {
	c.batches.Inc()
	c.batchSteps.Add(float64(chains) * float64(steps))
	c.batchDuration.Observe(duration.Seconds())
}

// OnImprove records a new global best.
func (c *Collector) OnImprove(_ context.Context, cost uint32) {
	c.improvements.Inc()
	c.bestCost.Set(float64(cost))
}

// OnReseed records restarted chains.
func (c *Collector) OnReseed(_ context.Context, count int) {
	c.reseeds.Add(float64(count))
}

// OnWorkerError records a failed request.
func (c *Collector) OnWorkerError(context.Context, error) {
	c.workerErrors.Inc()
}

func (c *Collector) OnLayoutStart(_ context.Context, nodeCount int) {
	c.layoutNodes.Observe(float64(nodeCount))
}

func (c *Collector) OnLayoutComplete(_ context.Context, _ int, duration time.Duration, err error) {
	c.layouts.WithLabelValues(status(err)).Inc()
	c.layoutDuration.Observe(duration.Seconds())
}

func (c *Collector) OnRouteComplete(_ context.Context, edges, fallback int, duration time.Duration) {
	c.routedEdges.Add(float64(edges))
	c.fallbackTracks.Add(float64(fallback))
	c.routeDuration.Observe(duration.Seconds())
}

func (c *Collector) OnRenderStart(context.Context, []string) {}

func (c *Collector) OnRenderComplete(_ context.Context, _ []string, duration time.Duration, err error) {
	c.renders.WithLabelValues(status(err)).Inc()
	c.renderDuration.Observe(duration.Seconds())
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (c *Collector) OnRequest(context.Context, string, string) {
	c.inFlight.Inc()
}

func (c *Collector) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	c.inFlight.Dec()
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
