// Package metrics records planner activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

const namespace = "mapf"

// Recorder is an algo.Observer that counts solver events on its own
// registry.
type Recorder struct {
	registry *prometheus.Registry

	nodes       prometheus.Counter
	conflicts   *prometheus.CounterVec
	constraints prometheus.Counter
	pruned      *prometheus.CounterVec
	solutions   prometheus.Counter
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	planLength  prometheus.Gauge
	makespan    prometheus.Histogram
}

var _ algo.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with all collectors registered on a fresh
// registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.nodes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cbs",
		Name:      "nodes_expanded_total",
		Help:      "Constraint-tree nodes popped for expansion",
	})
	r.conflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cbs",
		Name:      "conflicts_total",
		Help:      "Conflicts branched on, by kind",
	}, []string{"kind"})
	r.constraints = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cbs",
		Name:      "constraints_added_total",
		Help:      "Child nodes enqueued with one extra constraint",
	})
	r.pruned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cbs",
		Name:      "branches_pruned_total",
		Help:      "Child nodes discarded, by reason",
	}, []string{"reason"})
	r.solutions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "solutions_total",
		Help:      "Solutions reported by solvers",
	})
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Finished solver runs by solver and outcome",
	}, []string{"solver", "outcome"})
	r.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of solver runs",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"solver"})
	r.planLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "plan_length_steps",
		Help:      "Joint steps of the last solution",
	})
	r.makespan = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "cbs",
		Name:      "node_makespan_steps",
		Help:      "Longest trajectory of each expanded node",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	r.registry.MustRegister(r.nodes, r.conflicts, r.constraints, r.pruned,
		r.solutions, r.runs, r.duration, r.planLength, r.makespan)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) OnNodeExpanded(n algo.NodeInfo) {
	r.nodes.Inc()
	r.makespan.Observe(float64(n.Makespan))
}

func (r *Recorder) OnConflictDetected(c *algo.Conflict) {
	r.conflicts.WithLabelValues(c.Kind.String()).Inc()
}

func (r *Recorder) OnConstraintAdded(int, search.Constraint) { r.constraints.Inc() }

func (r *Recorder) OnBranchPruned(_ search.Constraint, reason algo.PruneReason) {
	r.pruned.WithLabelValues(string(reason)).Inc()
}

func (r *Recorder) OnSolutionFound(res *algo.Result) {
	r.solutions.Inc()
	if res.Plan != nil {
		r.planLength.Set(float64(res.Plan.Len()))
	}
}

// RecordResult counts a finished run, solved or not.
func (r *Recorder) RecordResult(res *algo.Result) {
	outcome := "solved"
	if !res.Solved {
		outcome = string(res.Reason)
	}
	r.runs.WithLabelValues(res.Solver, outcome).Inc()
	r.duration.WithLabelValues(res.Solver).Observe(res.Elapsed.Seconds())
}

// WriteText writes every metric family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
