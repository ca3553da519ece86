package search

import (
	"context"
	"testing"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
)

var blue = map[string]string{"blue": "0ABC"}

// agentProblem plans for the level's first agent over every box it owns.
func agentProblem(l *core.Level, cs ...Constraint) *AgentProblem {
	a := l.Agents[0]
	goal, hasGoal := l.AgentGoal(a)
	return &AgentProblem{
		Env:         NewEnv(l, core.NewDistanceTable(l), nil),
		Agent:       a,
		Start:       l.AgentStart(a),
		Goal:        goal,
		HasGoal:     hasGoal,
		Boxes:       l.Boxes,
		BoxGoals:    l.BoxGoals,
		Constraints: cs,
	}
}

func child(t *testing.T, s *AgentState, a core.Action) *AgentState {
	t.Helper()
	for _, c := range s.Expand() {
		if c.Action() == a {
			return c
		}
	}
	t.Fatalf("%v not applicable at %v t=%d", a, s.Pos(), s.Time())
	return nil
}

func TestAgentPushCorridor(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"++++++", "+0A  +", "++++++"},
		[]string{"++++++", "+   A+", "++++++"},
	)
	goal, stats, ok := Run(context.Background(), agentProblem(l).Initial(), NewBFS[*AgentState](), 0)
	if !ok {
		t.Fatalf("no plan found, stats %+v", stats)
	}
	push := core.PushAction(core.East, core.East)
	acts := goal.Actions()
	if len(acts) != 2 || acts[0] != push || acts[1] != push {
		t.Errorf("actions = %v, want [%v %v]", acts, push, push)
	}
	if goal.Pos() != (core.Position{Row: 1, Col: 3}) {
		t.Errorf("agent ends at %v", goal.Pos())
	}
}

func TestAgentPullOutOfDeadEnd(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+A0 +", "+++++"},
		[]string{"+++++", "+ A +", "+++++"},
	)
	goal, _, ok := Run(context.Background(), agentProblem(l).Initial(), NewBestFirst[*AgentState](AgentHeuristic), 0)
	if !ok {
		t.Fatal("no plan found")
	}
	pull := core.PullAction(core.East, core.West)
	if acts := goal.Actions(); len(acts) != 1 || acts[0] != pull {
		t.Errorf("actions = %v, want [%v]", acts, pull)
	}
}

func TestAgentHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		want    int
	}{
		{"clear goal", "+0A  B+", 2},
		{"wrong box on goal", "+0A B +", WrongBoxPenalty + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := level.MustFromGrid(blue,
				[]string{"+++++++", tt.initial, "+++++++"},
				[]string{"+++++++", "+   A +", "+++++++"},
			)
			if h := AgentHeuristic(agentProblem(l).Initial()); h != tt.want {
				t.Errorf("initial h = %d, want %d", h, tt.want)
			}
		})
	}
}

func TestExpandRespectsConstraint(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+   +", "+ 0 +", "+   +", "+++++"},
		nil,
	)
	a := l.Agents[0]
	blocked := core.Position{Row: 1, Col: 2}
	s := agentProblem(l, Constraint{Agent: a.Number, Pos: blocked, Time: 1}).Initial()

	children := s.Expand()
	if len(children) != 4 {
		t.Fatalf("got %d children, want 4 (NoOp plus three moves)", len(children))
	}
	for _, c := range children {
		if c.Pos() == blocked {
			t.Errorf("child %v enters constrained cell", c.Action())
		}
	}
}

func TestExpandRespectsBoxConstraint(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+   +", "+0A +", "+   +", "+++++"},
		nil,
	)
	target := core.Position{Row: 2, Col: 3}
	s := agentProblem(l, Constraint{Agent: l.Agents[0].Number, Pos: target, Time: 1}).Initial()
	for _, c := range s.Expand() {
		if _, ok := c.BoxAt(target); ok {
			t.Errorf("%v pushes box into constrained cell", c.Action())
		}
	}

	// Constraints on other agents are ignored.
	other := agentProblem(l, Constraint{Agent: 7, Pos: target, Time: 1}).Initial()
	child(t, other, core.PushAction(core.East, core.East))
}

func TestExpandCopiesBoxes(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+   +", "+0A +", "+   +", "+++++"},
		nil,
	)
	s := agentProblem(l).Initial()
	c := child(t, s, core.PushAction(core.East, core.South))
	if _, ok := c.BoxAt(core.Position{Row: 3, Col: 2}); !ok {
		t.Error("pushed box not at (3,2)")
	}
	if _, ok := s.BoxAt(core.Position{Row: 2, Col: 2}); !ok {
		t.Error("parent state changed by expansion")
	}
}

func TestFutureConstraintDelaysGoal(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+0  +", "+++++"},
		[]string{"+++++", "+0  +", "+++++"},
	)
	a := l.Agents[0]
	s := agentProblem(l, Constraint{Agent: a.Number, Pos: core.Position{Row: 1, Col: 3}, Time: 3}).Initial()
	if !s.Satisfied() {
		t.Fatal("initial state should satisfy the goal")
	}
	if s.IsGoal() {
		t.Fatal("goal accepted before the last constraint time")
	}
	goal, _, ok := Run(context.Background(), s, NewBFS[*AgentState](), 0)
	if !ok {
		t.Fatal("no plan found")
	}
	if goal.Time() != 3 {
		t.Errorf("goal time = %d, want 3", goal.Time())
	}
}

func TestKeyTimeFolding(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+0  +", "+++++"},
		nil,
	)
	waits := func(s *AgentState, n int) []*AgentState {
		out := []*AgentState{s}
		for i := 0; i < n; i++ {
			s = child(t, s, core.NoOp)
			out = append(out, s)
		}
		return out
	}

	free := waits(agentProblem(l).Initial(), 2)
	if !free[0].Equal(free[2]) || free[0].Hash() != free[2].Hash() {
		t.Error("without constraints waiting should not create new states")
	}

	a := l.Agents[0]
	chain := waits(agentProblem(l, Constraint{Agent: a.Number, Pos: core.Position{Row: 1, Col: 3}, Time: 2}).Initial(), 4)
	if chain[1].Equal(chain[2]) {
		t.Error("states before the last constraint must differ by time")
	}
	if !chain[3].Equal(chain[4]) || chain[3].Hash() != chain[4].Hash() {
		t.Error("states after the last constraint should fold together")
	}
}

func TestMaxTimeBoundsSearch(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"+++++", "+0  +", "+++++"},
		[]string{"+++++", "+  0+", "+++++"},
	)
	p := agentProblem(l, Constraint{Agent: l.Agents[0].Number, Pos: core.Position{Row: 1, Col: 3}, Time: 6})
	p.MaxTime = 3
	if _, _, ok := Run(context.Background(), p.Initial(), NewBFS[*AgentState](), 0); ok {
		t.Error("found a plan beyond the horizon")
	}
}

func TestOccupied(t *testing.T) {
	l := level.MustFromGrid(blue,
		[]string{"++++++", "+B 0 +", "+  A +", "++++++"},
		nil,
	)
	got := agentProblem(l).Initial().Occupied()
	want := []core.Position{{Row: 1, Col: 3}, {Row: 1, Col: 1}, {Row: 2, Col: 3}}
	if len(got) != len(want) {
		t.Fatalf("Occupied() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Occupied() = %v, want %v", got, want)
		}
	}
}
