// Package algo implements the multi-agent planners: conflict-based search,
// prioritized planning and the joint state-space search.
package algo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// Solver is the interface for multi-agent planners.
type Solver interface {
	// Solve plans for every agent of the problem. It never returns nil;
	// failure is reported through Result.Solved and Result.Reason.
	Solve(ctx context.Context, p *Problem) *Result

	// Name returns the algorithm name.
	Name() string
}

// ErrUnknownAlgorithm is returned by New for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithms lists the names New accepts.
var Algorithms = []string{"cbs", "prioritized", "joint"}

// Options configure the solver built by New.
type Options struct {
	Algorithm string
	Strategy  search.Strategy
	MaxTime   int
	MaxNodes  int
	Parallel  bool
	Logger    *slog.Logger
	Observer  Observer
}

// New builds the solver named by o.Algorithm.
func New(o Options) (Solver, error) {
	switch o.Algorithm {
	case "cbs":
		return &CBS{
			MaxTime:  o.MaxTime,
			MaxNodes: o.MaxNodes,
			Strategy: o.Strategy,
			Parallel: o.Parallel,
			Logger:   o.Logger,
			Observer: o.Observer,
		}, nil
	case "prioritized":
		return &Prioritized{MaxTime: o.MaxTime, Strategy: o.Strategy, Logger: o.Logger, Observer: o.Observer}, nil
	case "joint":
		return &JointSolver{MaxNodes: o.MaxNodes, Strategy: o.Strategy, Logger: o.Logger, Observer: o.Observer}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAlgorithm, o.Algorithm)
}

// Problem is the read-only planning context of one level.
type Problem struct {
	Level      *core.Level
	Distances  core.Distances
	Assignment *core.Assignment
	Env        *search.Env
}

// NewProblem computes distances and the box/goal assignment for l. Boxes no
// agent owns become static obstacles.
func NewProblem(l *core.Level) *Problem {
	d := core.NewDistanceTable(l)
	as := core.Assign(l, d)
	return &Problem{
		Level:      l,
		Distances:  d,
		Assignment: as,
		Env:        search.NewEnv(l, d, as.Unowned(l)),
	}
}

// AgentProblem builds the single-agent search input for agent index i under
// the given constraints.
func (p *Problem) AgentProblem(i int, cs []search.Constraint, maxTime int) *search.AgentProblem {
	a := p.Level.Agents[i]
	task := p.Assignment.Task(a)
	return &search.AgentProblem{
		Env:         p.Env,
		Agent:       a,
		Start:       p.Level.AgentStart(a),
		Goal:        task.Goal,
		HasGoal:     task.HasGoal,
		Boxes:       task.Boxes,
		BoxGoals:    task.BoxGoals,
		Constraints: search.ForAgent(cs, a.Number),
		MaxTime:     maxTime,
	}
}

// AssignedGoals lists every box goal some agent is responsible for.
func (p *Problem) AssignedGoals() []core.BoxGoal {
	var out []core.BoxGoal
	for _, t := range p.Assignment.Tasks {
		out = append(out, t.BoxGoals...)
	}
	return out
}

// Reason explains why a solver stopped without a plan.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonInfeasible Reason = "infeasible" // search space exhausted
	ReasonBudget     Reason = "budget"     // node or expansion limit reached
	ReasonCanceled   Reason = "canceled"   // context done
)

// Stats counts the work a solver did.
type Stats struct {
	Nodes     int // high-level nodes expanded (joint: states expanded)
	Generated int
	Conflicts int
	Replans   int
	Expanded  int // low-level states expanded across all replans
}

// Result is the outcome of one Solve call.
type Result struct {
	RunID        uuid.UUID
	Solver       string
	Solved       bool
	Reason       Reason
	Plan         *core.Plan
	Trajectories []*Trajectory // per agent, nil for the joint solver
	Cost         int
	Stats        Stats
	Unassigned   []core.BoxGoal
	Elapsed      time.Duration
}

func newResult(name string, p *Problem) *Result {
	return &Result{
		RunID:      uuid.New(),
		Solver:     name,
		Unassigned: p.Assignment.Unassigned,
	}
}

func (r *Result) fail(reason Reason, start time.Time) *Result {
	r.Solved = false
	r.Reason = reason
	r.Elapsed = time.Since(start)
	return r
}

// PlanMultiAgent runs CBS with default settings on l and returns one action
// sequence per agent in level order.
func PlanMultiAgent(ctx context.Context, l *core.Level) ([][]core.Action, bool) {
	res := NewCBS(DefaultMaxTime).Solve(ctx, NewProblem(l))
	if !res.Solved {
		return nil, false
	}
	out := make([][]core.Action, len(l.Agents))
	for i := range out {
		out[i] = res.Plan.AgentActions(i)
	}
	return out, true
}
