package state

import (
	"sync"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// CBSNodeInfo represents a node in the CBS constraint tree for visualization.
type CBSNodeInfo struct {
	algo.NodeInfo
	Added      *search.Constraint // constraint that created the node, nil for the root
	Expanded   bool
	IsSolution bool
	Conflict   *algo.Conflict // conflict the node branched on
}

// AlgoState collects solver events for display. Events arrive on the solver
// goroutine; readers call the accessor methods from the UI goroutine.
type AlgoState struct {
	mu sync.Mutex

	active bool

	nodes       map[int]*CBSNodeInfo
	order       []int // node ids in arrival order
	currentNode int

	expanded        int
	conflicts       int
	pruned          int
	currentConflict *algo.Conflict
}

// NewAlgoState creates an empty algorithm state.
func NewAlgoState() *AlgoState {
	as := &AlgoState{}
	as.reset()
	return as
}

func (a *AlgoState) reset() {
	a.nodes = make(map[int]*CBSNodeInfo)
	a.order = nil
	a.currentNode = -1
	a.expanded = 0
	a.conflicts = 0
	a.pruned = 0
	a.currentConflict = nil
}

// Start clears the tree and marks a run as active.
func (a *AlgoState) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	a.active = true
}

// Stop marks the run as finished; the tree stays for inspection.
func (a *AlgoState) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = false
}

// IsActive reports whether a run is in progress.
func (a *AlgoState) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *AlgoState) node(id int) *CBSNodeInfo {
	n, ok := a.nodes[id]
	if !ok {
		n = &CBSNodeInfo{NodeInfo: algo.NodeInfo{ID: id, ParentID: -1}}
		a.nodes[id] = n
		a.order = append(a.order, id)
	}
	return n
}

// ExpandNode records that a node was popped for expansion.
func (a *AlgoState) ExpandNode(info algo.NodeInfo) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.node(info.ID)
	n.NodeInfo = info
	n.Expanded = true
	a.currentNode = info.ID
	a.expanded++
}

// AddChild records an enqueued child of parent.
func (a *AlgoState) AddChild(parent, id int, c search.Constraint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.node(id)
	n.ParentID = parent
	n.Added = &c
}

// RecordConflict records the conflict the current node branches on.
func (a *AlgoState) RecordConflict(c *algo.Conflict) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.conflicts++
	a.currentConflict = c
	if n, ok := a.nodes[a.currentNode]; ok {
		n.Conflict = c
	}
}

// RecordPruned counts a discarded branch.
func (a *AlgoState) RecordPruned() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruned++
}

// MarkSolution marks the current node as the accepted one.
func (a *AlgoState) MarkSolution() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.currentConflict = nil
	if n, ok := a.nodes[a.currentNode]; ok {
		n.IsSolution = true
	}
}

// GetNodes returns a copy of the nodes in arrival order.
func (a *AlgoState) GetNodes() []CBSNodeInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]CBSNodeInfo, len(a.order))
	for i, id := range a.order {
		out[i] = *a.nodes[id]
	}
	return out
}

// GetCurrentNode returns the id of the node expanded last, or -1.
func (a *AlgoState) GetCurrentNode() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentNode
}

// CurrentConflict returns the conflict of the last expanded node, if any.
func (a *AlgoState) CurrentConflict() *algo.Conflict {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentConflict
}

// Counters returns expanded nodes, detected conflicts, pruned branches and
// open (enqueued but unexpanded) nodes.
func (a *AlgoState) Counters() (expanded, conflicts, pruned, open int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, n := range a.nodes {
		if !n.Expanded {
			open++
		}
	}
	return a.expanded, a.conflicts, a.pruned, open
}
