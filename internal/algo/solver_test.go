package algo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// crossingLevel has two agents whose shortest paths meet in the middle of a
// plus-shaped room at t=1.
func crossingLevel() *core.Level {
	return level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"+++++", "++1++", "+0  +", "++ ++", "+++++"},
		[]string{"+++++", "++ ++", "+  0+", "++1++", "+++++"},
	)
}

// twoBoxLevel has two independent pushes.
func twoBoxLevel() *core.Level {
	return level.MustFromGrid(map[string]string{"blue": "0A", "red": "1B"},
		[]string{"++++++", "+0A  +", "+1B  +", "++++++"},
		[]string{"++++++", "+   A+", "+   B+", "++++++"},
	)
}

// checkPlan verifies a solved result: conflict-free trajectories and a joint
// plan that replays legally into a goal state.
func checkPlan(t *testing.T, p *Problem, res *Result) {
	t.Helper()
	if !res.Solved {
		t.Fatalf("not solved: %s", res.Reason)
	}
	if res.Trajectories != nil {
		if c := FindFirstConflict(res.Trajectories); c != nil {
			t.Errorf("Solution has conflict: %v", c)
		}
	}
	frames, err := core.Replay(p.Level, res.Plan)
	if err != nil {
		t.Fatalf("Replay: %v\n%v", err, res.Plan.Lines())
	}
	if !frames[len(frames)-1].Satisfied(p.AssignedGoals(), p.Level.AgentGoals) {
		t.Errorf("plan does not reach the goal:\n%v", res.Plan.Lines())
	}
}

func TestPlanSingleAgent_GoalAtStart(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0"},
		[]string{"+++++", "+0  +", "+   +", "+   +", "+++++"},
		[]string{"+++++", "+0  +", "+   +", "+   +", "+++++"},
	)
	p := NewProblem(l)
	tr, _, ok := PlanSingleAgent(context.Background(), p.AgentProblem(0, nil, 0), search.BreadthFirst, 0)
	if !ok {
		t.Fatal("Expected trajectory, got none")
	}
	if len(tr.Actions) != 1 || tr.Actions[0] != core.NoOp {
		t.Errorf("actions = %v, want [NoOp]", tr.Actions)
	}
	if len(tr.Occupied) != 2 || tr.At(1)[0] != (core.Position{Row: 1, Col: 1}) {
		t.Errorf("occupied = %v", tr.Occupied)
	}
}

func TestPlanSingleAgent_Corridor(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0"},
		[]string{"+++++", "+0  +", "+++++"},
		[]string{"+++++", "+  0+", "+++++"},
	)
	p := NewProblem(l)
	tr, _, ok := PlanSingleAgent(context.Background(), p.AgentProblem(0, nil, 0), search.BreadthFirst, 0)
	if !ok {
		t.Fatal("Expected trajectory, got none")
	}
	east := core.MoveAction(core.East)
	if len(tr.Actions) != 2 || tr.Actions[0] != east || tr.Actions[1] != east {
		t.Errorf("actions = %v, want [%v %v]", tr.Actions, east, east)
	}
	if got, want := tr.Len(), p.Distances.Distance(l.AgentStart(l.Agents[0]), core.Position{Row: 1, Col: 3}); got != want {
		t.Errorf("length %d, distance %d", got, want)
	}
}

func TestPlanSingleAgent_StartConstrained(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0"},
		[]string{"+++++", "+0  +", "+++++"},
		[]string{"+++++", "+  0+", "+++++"},
	)
	p := NewProblem(l)
	cs := []search.Constraint{{Agent: 0, Pos: core.Position{Row: 1, Col: 1}, Time: 0}}
	if _, _, ok := PlanSingleAgent(context.Background(), p.AgentProblem(0, cs, 0), search.BreadthFirst, 0); ok {
		t.Error("trajectory found although the start cell is forbidden at t=0")
	}
}

func TestCBS_ResolvesCrossing(t *testing.T) {
	for _, st := range []search.Strategy{search.BreadthFirst, search.BestFirstSearch} {
		t.Run(st.String(), func(t *testing.T) {
			p := NewProblem(crossingLevel())
			cbs := NewCBS(20)
			cbs.Strategy = st
			res := cbs.Solve(context.Background(), p)
			checkPlan(t, p, res)

			if res.Trajectories[0].Len() == 2 && res.Trajectories[1].Len() == 2 {
				t.Error("both agents kept their unconstrained shortest paths")
			}
			if res.Stats.Conflicts == 0 {
				t.Error("no conflict was resolved")
			}
		})
	}
}

func TestCBS_UnservableBoxStaysPut(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0A", "green": "B"},
		[]string{"+++++++", "+0A   +", "+  B  +", "+++++++"},
		[]string{"+++++++", "+   A +", "+    B+", "+++++++"},
	)
	p := NewProblem(l)
	res := NewCBS(30).Solve(context.Background(), p)
	checkPlan(t, p, res)

	if len(res.Unassigned) != 1 || res.Unassigned[0].Letter != 'B' {
		t.Errorf("Unassigned = %v, want the B goal", res.Unassigned)
	}
	frames, _ := core.Replay(l, res.Plan)
	green := l.Boxes[1]
	for i, f := range frames {
		if f.BoxPos(green) != l.BoxStart(green) {
			t.Fatalf("green box moved at step %d", i)
		}
	}
}

func TestCBS_CorridorSwapFails(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"+++++", "+0 1+", "+++++"},
		[]string{"+++++", "+1 0+", "+++++"},
	)
	cbs := NewCBS(6)
	cbs.MaxNodes = 300
	cbs.Strategy = search.BreadthFirst
	res := cbs.Solve(context.Background(), NewProblem(l))
	if res.Solved {
		t.Fatalf("swap in a one-wide corridor solved:\n%v", res.Plan.Lines())
	}
	if res.Reason != ReasonInfeasible && res.Reason != ReasonBudget {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestCBS_ExhaustsConstraintTree(t *testing.T) {
	// Two cells, two agents, swapped goals: every move is a follow conflict.
	// The horizon bounds the constraint universe so the open set empties.
	l := level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"++++", "+01+", "++++"},
		[]string{"++++", "+10+", "++++"},
	)
	cbs := NewCBS(2)
	cbs.MaxNodes = 5000
	cbs.Strategy = search.BreadthFirst
	res := cbs.Solve(context.Background(), NewProblem(l))
	if res.Solved || res.Reason != ReasonInfeasible {
		t.Fatalf("solved=%v reason=%q, want infeasible", res.Solved, res.Reason)
	}
	if res.Stats.Nodes < 2 || res.Stats.Nodes >= cbs.MaxNodes {
		t.Errorf("nodes = %d, want an exhausted tree below the budget", res.Stats.Nodes)
	}
}

func TestCBS_UnreachableGoal(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0"},
		[]string{"++++++", "+0 + +", "++++++"},
		[]string{"++++++", "+  +0+", "++++++"},
	)
	res := NewCBS(10).Solve(context.Background(), NewProblem(l))
	if res.Solved || res.Reason != ReasonInfeasible {
		t.Errorf("solved=%v reason=%q, want infeasible", res.Solved, res.Reason)
	}
}

func TestCBS_NodeBudget(t *testing.T) {
	cbs := NewCBS(20)
	cbs.MaxNodes = 1
	res := cbs.Solve(context.Background(), NewProblem(crossingLevel()))
	if res.Solved || res.Reason != ReasonBudget {
		t.Errorf("solved=%v reason=%q, want budget", res.Solved, res.Reason)
	}
}

func TestCBS_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, parallel := range []bool{false, true} {
		cbs := NewCBS(20)
		cbs.Parallel = parallel
		res := cbs.Solve(ctx, NewProblem(crossingLevel()))
		if res.Reason != ReasonCanceled {
			t.Errorf("parallel=%v: reason = %q, want canceled", parallel, res.Reason)
		}
	}
}

func TestPrioritized_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewPrioritized(20).Solve(ctx, NewProblem(crossingLevel()))
	if res.Solved || res.Reason != ReasonCanceled {
		t.Errorf("solved=%v reason=%q, want canceled", res.Solved, res.Reason)
	}
}

func TestJointSolver_StopsAtDeadline(t *testing.T) {
	spec, err := level.Generate(level.GenParams{Seed: 7, Rows: 12, Cols: 14, Agents: 5, Colors: 5, Boxes: 2, WallDensity: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	l, err := spec.Build()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := NewJointSolver(0).Solve(ctx, NewProblem(l))
	if res.Solved || res.Reason != ReasonCanceled {
		t.Fatalf("solved=%v reason=%q, want canceled", res.Solved, res.Reason)
	}
	if res.Elapsed > 10*time.Second {
		t.Errorf("solver ran %v past a 50ms deadline", res.Elapsed)
	}
}

func TestCBS_ParallelIsDeterministic(t *testing.T) {
	solve := func(parallel bool) []string {
		cbs := NewCBS(20)
		cbs.Parallel = parallel
		res := cbs.Solve(context.Background(), NewProblem(crossingLevel()))
		if !res.Solved {
			t.Fatalf("parallel=%v: not solved", parallel)
		}
		return res.Plan.Lines()
	}
	seq, par := solve(false), solve(true)
	if len(seq) != len(par) {
		t.Fatalf("plans differ:\n%v\n%v", seq, par)
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("plans differ at step %d:\n%v\n%v", i+1, seq, par)
		}
	}
}

type countingObserver struct {
	nodes     int
	conflicts int
	added     int
	pruned    int
	solutions int
	lastRoot  int
}

func (o *countingObserver) OnNodeExpanded(n NodeInfo) {
	o.nodes++
	if n.ParentID < 0 {
		o.lastRoot = n.ID
	}
}
func (o *countingObserver) OnConflictDetected(*Conflict)                  { o.conflicts++ }
func (o *countingObserver) OnConstraintAdded(int, search.Constraint)      { o.added++ }
func (o *countingObserver) OnBranchPruned(search.Constraint, PruneReason) { o.pruned++ }
func (o *countingObserver) OnSolutionFound(*Result)                       { o.solutions++ }

func TestCBS_Observer(t *testing.T) {
	obs := &countingObserver{lastRoot: -1}
	cbs := NewCBS(20)
	cbs.Observer = obs
	res := cbs.Solve(context.Background(), NewProblem(crossingLevel()))
	if !res.Solved {
		t.Fatal("not solved")
	}
	if obs.nodes != res.Stats.Nodes || obs.conflicts != res.Stats.Conflicts {
		t.Errorf("observer saw %d nodes/%d conflicts, stats %+v", obs.nodes, obs.conflicts, res.Stats)
	}
	if obs.added != res.Stats.Generated {
		t.Errorf("observer saw %d children, stats %d", obs.added, res.Stats.Generated)
	}
	if obs.solutions != 1 || obs.lastRoot != 0 {
		t.Errorf("solutions=%d root=%d", obs.solutions, obs.lastRoot)
	}
}

func TestAllSolversReturnSolution(t *testing.T) {
	solvers := []Solver{
		NewCBS(30),
		NewPrioritized(30),
		NewJointSolver(20000),
	}
	for _, solver := range solvers {
		t.Run(solver.Name(), func(t *testing.T) {
			p := NewProblem(twoBoxLevel())
			res := solver.Solve(context.Background(), p)
			checkPlan(t, p, res)
			if res.RunID.String() == "" || res.Solver != solver.Name() {
				t.Errorf("result metadata: %+v", res)
			}
		})
	}
}

func TestPrioritizedCrossing(t *testing.T) {
	p := NewProblem(crossingLevel())
	checkPlan(t, p, NewPrioritized(20).Solve(context.Background(), p))
}

func TestJointSolverCrossing(t *testing.T) {
	p := NewProblem(crossingLevel())
	checkPlan(t, p, NewJointSolver(50000).Solve(context.Background(), p))
}

func TestJointSolverGoalAtStart(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"+++++", "+0 1+", "+++++"},
		nil,
	)
	res := NewJointSolver(10).Solve(context.Background(), NewProblem(l))
	if !res.Solved || res.Plan.Len() != 1 || res.Plan.Moves() != 0 {
		t.Errorf("solved=%v plan=%v, want a single joint NoOp", res.Solved, res.Plan)
	}
}

func TestPlanMultiAgent(t *testing.T) {
	acts, ok := PlanMultiAgent(context.Background(), crossingLevel())
	if !ok {
		t.Fatal("PlanMultiAgent failed")
	}
	if len(acts) != 2 || len(acts[0]) != len(acts[1]) {
		t.Errorf("per-agent sequences = %v", acts)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Algorithms {
		s, err := New(Options{Algorithm: name, MaxTime: 10, MaxNodes: 10})
		if err != nil || s == nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New(Options{Algorithm: "mcts"}); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("New(mcts) error = %v", err)
	}
}

func TestNewWiresObserver(t *testing.T) {
	for _, name := range Algorithms {
		t.Run(name, func(t *testing.T) {
			obs := &countingObserver{lastRoot: -1}
			s, err := New(Options{Algorithm: name, Strategy: search.BestFirstSearch, MaxTime: 30, MaxNodes: 20000, Observer: obs})
			if err != nil {
				t.Fatal(err)
			}
			p := NewProblem(twoBoxLevel())
			checkPlan(t, p, s.Solve(context.Background(), p))
			if obs.solutions != 1 {
				t.Errorf("OnSolutionFound called %d times, want 1", obs.solutions)
			}
		})
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	if _, err := New(Options{Algorithm: ""}); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("New(\"\") error = %v", err)
	}
}
