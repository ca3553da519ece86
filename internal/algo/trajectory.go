package algo

import (
	"context"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// Trajectory is one agent's single-agent plan: its actions and, per time
// step, the cells it occupies (agent first, then its boxes).
type Trajectory struct {
	Agent    *core.Agent
	Actions  []core.Action
	Occupied [][]core.Position // len(Actions)+1 entries, index = time step
}

// Len returns the number of actions.
func (tr *Trajectory) Len() int { return len(tr.Actions) }

// At returns the occupied cells at time t. Past its end the agent holds its
// final placement.
func (tr *Trajectory) At(t int) []core.Position {
	if t >= len(tr.Occupied) {
		return tr.Occupied[len(tr.Occupied)-1]
	}
	return tr.Occupied[t]
}

// PlanSingleAgent searches for a trajectory of prob.Agent that satisfies its
// goals and constraints. A trajectory of a goal already met at time 0 is a
// single NoOp. maxExpanded bounds the search (0 = unbounded); a done ctx
// stops it with stats.Canceled set.
func PlanSingleAgent(ctx context.Context, prob *search.AgentProblem, st search.Strategy, maxExpanded int) (*Trajectory, search.Stats, bool) {
	initial := prob.Initial()
	if initial.Violates() {
		return nil, search.Stats{}, false
	}
	frontier := search.NewFrontier[*search.AgentState](st, search.AgentHeuristic)
	goal, stats, ok := search.Run(ctx, initial, frontier, maxExpanded)
	if !ok {
		return nil, stats, false
	}

	path := goal.Path()
	tr := &Trajectory{
		Agent:    prob.Agent,
		Actions:  make([]core.Action, 0, len(path)),
		Occupied: make([][]core.Position, 0, len(path)+1),
	}
	for i, s := range path {
		if i > 0 {
			tr.Actions = append(tr.Actions, s.Action())
		}
		tr.Occupied = append(tr.Occupied, s.Occupied())
	}
	if len(tr.Actions) == 0 {
		tr.Actions = append(tr.Actions, core.NoOp)
		tr.Occupied = append(tr.Occupied, tr.Occupied[0])
	}
	return tr, stats, true
}
