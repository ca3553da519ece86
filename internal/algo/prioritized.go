package algo

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// Prioritized plans agents one at a time; each agent treats the cells of the
// agents planned before it as reserved. It is fast but incomplete.
type Prioritized struct {
	MaxTime  int
	Strategy search.Strategy
	Logger   *slog.Logger
	Observer Observer
}

// NewPrioritized creates a prioritized planning solver.
func NewPrioritized(maxTime int) *Prioritized {
	return &Prioritized{MaxTime: maxTime, Strategy: search.BestFirstSearch}
}

func (p *Prioritized) Name() string { return "Prioritized" }

// Solve implements prioritized planning.
func (p *Prioritized) Solve(ctx context.Context, prob *Problem) *Result {
	start := time.Now()
	res := newResult(p.Name(), prob)
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("run", res.RunID.String(), "solver", p.Name())

	// Step 1: compute priority order
	order := p.computePriority(prob)

	// Step 2: plan in priority order, reserving each trajectory
	trajs := make([]*Trajectory, len(prob.Level.Agents))
	var planned []*Trajectory
	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return res.fail(ReasonCanceled, start)
		}
		cs := reservations(prob.Level.Agents[i].Number, planned)
		tr, stats, ok := PlanSingleAgent(ctx, prob.AgentProblem(i, cs, p.MaxTime), p.Strategy, 0)
		res.Stats.Replans++
		res.Stats.Expanded += stats.Expanded
		if stats.Canceled {
			return res.fail(ReasonCanceled, start)
		}
		if !ok {
			log.Info("agent has no trajectory around reservations", "agent", prob.Level.Agents[i].Number)
			return res.fail(ReasonInfeasible, start)
		}
		trajs[i] = tr
		planned = append(planned, tr)
	}

	// Reservations end with each earlier trajectory, so a later agent may
	// still cross a parked one.
	if c := FindFirstConflict(trajs); c != nil {
		res.Stats.Conflicts++
		log.Info("prioritized plan has a residual conflict", "conflict", c.String())
		return res.fail(ReasonInfeasible, start)
	}

	perAgent := make([][]core.Action, len(trajs))
	for i, tr := range trajs {
		perAgent[i] = tr.Actions
	}
	res.Solved = true
	res.Plan = core.NewPlan(prob.Level.Agents, perAgent)
	res.Trajectories = trajs
	res.Cost = res.Plan.Len()
	res.Elapsed = time.Since(start)
	log.Info("plan found", "length", res.Plan.Len(), "elapsed", res.Elapsed)
	if p.Observer != nil {
		p.Observer.OnSolutionFound(res)
	}
	return res
}

// reservations forbids agent from every cell an earlier trajectory occupies
// at t, and from following into or being followed out of it at t±1.
func reservations(agent int, planned []*Trajectory) []search.Constraint {
	var cs []search.Constraint
	seen := make(map[search.Constraint]bool)
	add := func(c search.Constraint) {
		if c.Time < 0 || seen[c] {
			return
		}
		seen[c] = true
		cs = append(cs, c)
	}
	for _, tr := range planned {
		for t, cells := range tr.Occupied {
			for _, pos := range cells {
				add(search.Constraint{Agent: agent, Pos: pos, Time: t - 1})
				add(search.Constraint{Agent: agent, Pos: pos, Time: t})
				add(search.Constraint{Agent: agent, Pos: pos, Time: t + 1})
			}
		}
	}
	return cs
}

// computePriority orders agents for planning: more box goals first, then
// agent number.
func (p *Prioritized) computePriority(prob *Problem) []int {
	order := make([]int, len(prob.Level.Agents))
	for i := range order {
		order[i] = i
	}
	load := func(i int) int {
		return len(prob.Assignment.Task(prob.Level.Agents[i]).BoxGoals)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return load(order[a]) > load(order[b])
	})
	return order
}
