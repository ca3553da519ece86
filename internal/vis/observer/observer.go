// Package observer feeds solver events into the visualizer state.
package observer

import (
	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// AlgoStateObserver adapts AlgoState to the algo.Observer interface.
type AlgoStateObserver struct {
	state *state.AlgoState
}

var _ algo.Observer = (*AlgoStateObserver)(nil)

// NewAlgoStateObserver creates a new observer backed by AlgoState.
func NewAlgoStateObserver(as *state.AlgoState) *AlgoStateObserver {
	return &AlgoStateObserver{state: as}
}

func (o *AlgoStateObserver) OnNodeExpanded(node algo.NodeInfo) {
	o.state.ExpandNode(node)
}

func (o *AlgoStateObserver) OnConflictDetected(conflict *algo.Conflict) {
	o.state.RecordConflict(conflict)
}

func (o *AlgoStateObserver) OnConstraintAdded(nodeID int, constraint search.Constraint) {
	o.state.AddChild(o.state.GetCurrentNode(), nodeID, constraint)
}

func (o *AlgoStateObserver) OnBranchPruned(search.Constraint, algo.PruneReason) {
	o.state.RecordPruned()
}

func (o *AlgoStateObserver) OnSolutionFound(*algo.Result) {
	o.state.MarkSolution()
}

// Multi fans events out to several observers in order.
type Multi []algo.Observer

func (m Multi) OnNodeExpanded(n algo.NodeInfo) {
	for _, o := range m {
		o.OnNodeExpanded(n)
	}
}

func (m Multi) OnConflictDetected(c *algo.Conflict) {
	for _, o := range m {
		o.OnConflictDetected(c)
	}
}

func (m Multi) OnConstraintAdded(id int, c search.Constraint) {
	for _, o := range m {
		o.OnConstraintAdded(id, c)
	}
}

func (m Multi) OnBranchPruned(c search.Constraint, r algo.PruneReason) {
	for _, o := range m {
		o.OnBranchPruned(c, r)
	}
}

func (m Multi) OnSolutionFound(res *algo.Result) {
	for _, o := range m {
		o.OnSolutionFound(res)
	}
}
