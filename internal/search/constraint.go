// Package search implements the state-space search layer: single-agent and
// joint search states, frontier strategies, heuristics and the generic graph
// search driver.
package search

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// Constraint forbids an agent (or any box it tracks) from occupying Pos at
// time step Time.
type Constraint struct {
	Agent int // agent number
	Pos   core.Position
	Time  int
}

func (c Constraint) String() string {
	return fmt.Sprintf("agent %d !@ %v t=%d", c.Agent, c.Pos, c.Time)
}

// ForAgent filters the constraints that bind one agent.
func ForAgent(cs []Constraint, agent int) []Constraint {
	var out []Constraint
	for _, c := range cs {
		if c.Agent == agent {
			out = append(out, c)
		}
	}
	return out
}

// SortConstraints orders constraints by time, agent, then position.
func SortConstraints(cs []Constraint) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Agent != b.Agent {
			return a.Agent < b.Agent
		}
		return a.Pos.Less(b.Pos)
	})
}

// constraintIndex groups one agent's constraints by time step.
type constraintIndex struct {
	byTime map[int][]core.Position
	last   int // latest constrained time, -1 when empty
}

func newConstraintIndex(cs []Constraint) constraintIndex {
	idx := constraintIndex{byTime: make(map[int][]core.Position), last: -1}
	for _, c := range cs {
		idx.byTime[c.Time] = append(idx.byTime[c.Time], c.Pos)
		if c.Time > idx.last {
			idx.last = c.Time
		}
	}
	return idx
}

// keyTime folds time steps past the last constraint into one value; after
// it the time step no longer affects admissibility.
func (idx constraintIndex) keyTime(t int) int {
	if t > idx.last {
		return idx.last + 1
	}
	return t
}
