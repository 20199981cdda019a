// Package metrics exports the progress of bspgraph runs as prometheus
// metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xlab/openrank/bspgraph"
)

// Compile-time check for ensuring Collector implements bspgraph.Observer.
var _ bspgraph.Observer = (*Collector)(nil)

// Collector implements bspgraph.Observer and records run progress using a
// set of prometheus metrics.
type Collector struct {
	supersteps     prometheus.Counter
	stepDuration   prometheus.Histogram
	activeVertices prometheus.Gauge
	runs           *prometheus.CounterVec
}

// NewCollector creates a new Collector and registers its metrics with reg.
// If reg is nil, the metrics are registered with the default prometheus
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		supersteps: factory.NewCounter(prometheus.CounterOpts{
			Name: "bspgraph_supersteps_total",
			Help: "The total number of executed supersteps",
		}),
		stepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bspgraph_superstep_duration_seconds",
			Help:    "The time it took to execute each superstep",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		activeVertices: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bspgraph_active_vertices",
			Help: "The number of vertices that were processed in the last superstep",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bspgraph_runs_total",
			Help: "The total number of completed runs partitioned by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveSuperstep implements bspgraph.Observer.
func (c *Collector) ObserveSuperstep(_, activeVertices int, elapsed time.Duration) {
	c.supersteps.Inc()
	c.stepDuration.Observe(elapsed.Seconds())
	c.activeVertices.Set(float64(activeVertices))
}

// ObserveRunCompleted implements bspgraph.Observer.
func (c *Collector) ObserveRunCompleted(state bspgraph.State, _ int) {
	c.runs.WithLabelValues(state.String()).Inc()
}
