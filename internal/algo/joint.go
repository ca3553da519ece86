package algo

import (
	"context"
	"log/slog"
	"time"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// JointSolver searches the joint state space of all agents directly. It is
// exact with respect to the joint-action rules but its branching factor grows
// exponentially with the number of agents.
type JointSolver struct {
	MaxNodes int // states to expand, 0 = unbounded
	Strategy search.Strategy
	Logger   *slog.Logger
	Observer Observer
}

// NewJointSolver creates a joint-search solver with a best-first frontier.
func NewJointSolver(maxNodes int) *JointSolver {
	return &JointSolver{MaxNodes: maxNodes, Strategy: search.BestFirstSearch}
}

func (j *JointSolver) Name() string { return "Joint" }

// Solve runs the graph search driver over the joint state. Box goals no
// agent can serve are left out of the goal test; unowned boxes stay put.
func (j *JointSolver) Solve(ctx context.Context, p *Problem) *Result {
	start := time.Now()
	res := newResult(j.Name(), p)
	log := j.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("run", res.RunID.String(), "solver", j.Name())

	if err := ctx.Err(); err != nil {
		return res.fail(ReasonCanceled, start)
	}

	prob := search.NewTaskProblem(p.Env, p.Assignment.Tasks)
	frontier := search.NewFrontier[*search.JointState](j.Strategy, search.JointHeuristic)
	goal, stats, ok := search.Run(ctx, prob.Initial(), frontier, j.MaxNodes)
	res.Stats.Nodes = stats.Expanded
	res.Stats.Generated = stats.Generated
	res.Stats.Expanded = stats.Expanded
	if !ok {
		reason := ReasonInfeasible
		switch {
		case stats.Canceled:
			reason = ReasonCanceled
		case stats.BudgetHit:
			reason = ReasonBudget
		}
		log.Info("no joint plan", "reason", reason, "expanded", stats.Expanded)
		return res.fail(reason, start)
	}

	plan := goal.Plan()
	if plan.Len() == 0 {
		// Goal holds at time 0: a single joint NoOp.
		plan.Steps = [][]core.Action{make([]core.Action, len(p.Level.Agents))}
	}
	res.Solved = true
	res.Plan = plan
	res.Cost = plan.Len()
	res.Elapsed = time.Since(start)
	log.Info("plan found", "length", plan.Len(), "expanded", stats.Expanded, "elapsed", res.Elapsed)
	if j.Observer != nil {
		j.Observer.OnSolutionFound(res)
	}
	return res
}
