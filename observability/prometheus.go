// Package observability exports search and build metrics to Prometheus.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/starscan"
)

var _ starscan.MetricsCollector = (*PrometheusCollector)(nil)

const namespace = "starscan"

// PrometheusCollector implements starscan.MetricsCollector.
type PrometheusCollector struct {
	searchLatency  *prometheus.HistogramVec
	searches       *prometheus.CounterVec
	searchMatches  prometheus.Counter
	taskLatency    *prometheus.HistogramVec
	tasks          *prometheus.CounterVec
	systemsScanned prometheus.Counter
	decodeErrors   *prometheus.CounterVec
	shardsIndexed  prometheus.Counter
	systemsIndexed prometheus.Counter
	shardLatency   prometheus.Histogram
	builds         *prometheus.CounterVec
	buildLatency   prometheus.Histogram
	catalogShards  prometheus.Gauge
}

// NewPrometheusCollector registers the starscan metrics with reg. A nil reg
// registers with the default registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusCollector{
		searchLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"mode", "status"}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Searches run",
		}, []string{"mode", "status"}),
		searchMatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "matches_total",
			Help:      "Systems returned by searches",
		}),
		taskLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "duration_seconds",
			Help:      "Time spent scanning one shard",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		tasks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "total",
			Help:      "Search tasks by final status",
		}, []string{"status"}),
		systemsScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "systems_scanned_total",
			Help:      "Systems decoded by search tasks",
		}),
		decodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Malformed shard lines skipped",
		}, []string{"phase"}),
		shardsIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "shards_indexed_total",
			Help:      "Shards indexed by catalog builds",
		}),
		systemsIndexed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "systems_indexed_total",
			Help:      "Systems indexed by catalog builds",
		}),
		shardLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "shard_duration_seconds",
			Help:      "Time spent indexing one shard",
			Buckets:   prometheus.DefBuckets,
		}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "total",
			Help:      "Catalog builds run",
		}, []string{"status"}),
		buildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Catalog build latency in seconds",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}),
		catalogShards: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "catalog_shards",
			Help:      "Shards in the last catalog built",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSearch implements starscan.MetricsCollector.
func (c *PrometheusCollector) RecordSearch(mode string, _, matches int, d time.Duration, err error) {
	s := status(err)
	c.searchLatency.WithLabelValues(mode, s).Observe(d.Seconds())
	c.searches.WithLabelValues(mode, s).Inc()
	c.searchMatches.Add(float64(matches))
}

// RecordTask implements starscan.MetricsCollector.
func (c *PrometheusCollector) RecordTask(status string, systems, decodeErrors int64, d time.Duration) {
	c.tasks.WithLabelValues(status).Inc()
	if status != "skipped" {
		c.taskLatency.WithLabelValues(status).Observe(d.Seconds())
	}
	c.systemsScanned.Add(float64(systems))
	c.decodeErrors.WithLabelValues("search").Add(float64(decodeErrors))
}

// RecordShardIndexed implements starscan.MetricsCollector.
func (c *PrometheusCollector) RecordShardIndexed(systems, decodeErrors int64, d time.Duration) {
	c.shardsIndexed.Inc()
	c.systemsIndexed.Add(float64(systems))
	c.shardLatency.Observe(d.Seconds())
	c.decodeErrors.WithLabelValues("build").Add(float64(decodeErrors))
}

// RecordBuild implements starscan.MetricsCollector.
func (c *PrometheusCollector) RecordBuild(shards int, _ int64, d time.Duration, err error) {
	c.builds.WithLabelValues(status(err)).Inc()
	c.buildLatency.Observe(d.Seconds())
	if err == nil {
		c.catalogShards.Set(float64(shards))
	}
}
