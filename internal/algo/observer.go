package algo

import "github.com/elektrokombinacija/mapf-hospital/internal/search"

// NodeInfo describes one CBS constraint-tree node.
type NodeInfo struct {
	ID          int
	ParentID    int // -1 for the root
	Cost        int
	Constraints int
	Makespan    int
}

// PruneReason tells why a CBS branch was not enqueued.
type PruneReason string

const (
	PruneInfeasible PruneReason = "infeasible"
	PruneDuplicate  PruneReason = "duplicate"
)

// Observer is the interface for observing solver execution. Calls happen
// on the solver's goroutine.
type Observer interface {
	// OnNodeExpanded is called when a CBS node is popped for expansion.
	OnNodeExpanded(node NodeInfo)

	// OnConflictDetected is called with the conflict a node branches on.
	OnConflictDetected(conflict *Conflict)

	// OnConstraintAdded is called when a child node is enqueued.
	OnConstraintAdded(nodeID int, constraint search.Constraint)

	// OnBranchPruned is called when a child is discarded.
	OnBranchPruned(constraint search.Constraint, reason PruneReason)

	// OnSolutionFound is called once with a successful result.
	OnSolutionFound(result *Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnNodeExpanded(NodeInfo)                       {}
func (NopObserver) OnConflictDetected(*Conflict)                  {}
func (NopObserver) OnConstraintAdded(int, search.Constraint)      {}
func (NopObserver) OnBranchPruned(search.Constraint, PruneReason) {}
func (NopObserver) OnSolutionFound(*Result)                       {}
