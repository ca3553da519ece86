package search

import (
	"context"
	"testing"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
)

func jointProblem(l *core.Level) *JointProblem {
	return NewJointProblem(NewEnv(l, core.NewDistanceTable(l), nil), l.BoxGoals)
}

func TestJointExpandPrunesClashes(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"+++++", "+0 1+", "+++++"},
		nil,
	)
	children := jointProblem(l).Initial().Expand()
	if len(children) != 3 {
		t.Fatalf("got %d joint successors, want 3", len(children))
	}
	for _, c := range children {
		if c.AgentPos(0) == c.AgentPos(1) {
			t.Errorf("joint action %v puts both agents on %v", c.Joint(), c.AgentPos(0))
		}
	}
}

func TestJointExpandForbidsFollowing(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "01"},
		[]string{"+++++", "+01 +", "+++++"},
		nil,
	)
	for _, c := range jointProblem(l).Initial().Expand() {
		if c.Joint()[0] != core.NoOp {
			t.Errorf("agent 0 moved into a cell occupied at step start: %v", c.Joint())
		}
	}
}

func TestJointExpandSharedBox(t *testing.T) {
	// Both agents can pull A; only one may move it per step.
	l := level.MustFromGrid(map[string]string{"blue": "01A"},
		[]string{"+++++", "+ 0 +", "+ A +", "+ 1 +", "+++++"},
		nil,
	)
	s := jointProblem(l).Initial()
	for _, c := range s.Expand() {
		moved := 0
		for _, a := range c.Joint() {
			if a.MovesBox() {
				moved++
			}
		}
		if moved > 1 {
			t.Errorf("joint action %v moves the box twice", c.Joint())
		}
	}
}

func twoBoxLevel() *core.Level {
	return level.MustFromGrid(map[string]string{"blue": "0A", "red": "1B"},
		[]string{"+++++", "+0A +", "+1B +", "+++++"},
		[]string{"+++++", "+  A+", "+  B+", "+++++"},
	)
}

func TestJointRun(t *testing.T) {
	l := twoBoxLevel()
	goal, _, ok := Run(context.Background(), jointProblem(l).Initial(), NewBFS[*JointState](), 0)
	if !ok {
		t.Fatal("no joint plan found")
	}
	plan := goal.Plan()
	push := core.PushAction(core.East, core.East)
	if plan.Len() != 1 || plan.Steps[0][0] != push || plan.Steps[0][1] != push {
		t.Fatalf("plan = %v, want one step of double pushes", plan.Lines())
	}
	frames, err := core.Replay(l, plan)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !frames[len(frames)-1].Satisfied(l.BoxGoals, l.AgentGoals) {
		t.Error("replayed plan does not reach the goal")
	}
}

func TestJointHeuristic(t *testing.T) {
	l := twoBoxLevel()
	s := jointProblem(l).Initial()
	if h := JointHeuristic(s); h != 2*GoalWeight+4 {
		t.Errorf("initial h = %d, want %d", h, 2*GoalWeight+4)
	}

	goal, _, ok := Run(context.Background(), s, NewBestFirst[*JointState](JointHeuristic), 0)
	if !ok {
		t.Fatal("best-first found no plan")
	}
	if h := JointHeuristic(goal); h != 2 {
		t.Errorf("goal h = %d, want 2 (two moving agents)", h)
	}
}

func TestJointHeuristicOwnedGoals(t *testing.T) {
	// Both agents are blue; A belongs to agent 0, so agent 1 walking to its
	// own goal is not gated on A.
	l := level.MustFromGrid(map[string]string{"blue": "01A"},
		[]string{"++++++", "+0A  +", "+1   +", "++++++"},
		[]string{"++++++", "+   A+", "+   1+", "++++++"},
	)
	d := core.NewDistanceTable(l)
	env := NewEnv(l, d, nil)

	byColor := NewJointProblem(env, l.BoxGoals).Initial()
	if h := JointHeuristic(byColor); h != GoalWeight+3 {
		t.Errorf("color-gated h = %d, want %d", h, GoalWeight+3)
	}

	owned := NewTaskProblem(env, core.Assign(l, d).Tasks)
	if len(owned.Owners) != 1 || owned.Owners[0] != 0 {
		t.Fatalf("owners = %v, want [0]", owned.Owners)
	}
	if h := JointHeuristic(owned.Initial()); h != GoalWeight+6 {
		t.Errorf("owner-gated h = %d, want %d", h, GoalWeight+6)
	}
}

func TestJointEqualIgnoresTime(t *testing.T) {
	s := jointProblem(twoBoxLevel()).Initial()
	var wait *JointState
	for _, c := range s.Expand() {
		if c.Joint()[0] == core.NoOp && c.Joint()[1] == core.NoOp {
			wait = c
		}
	}
	if wait == nil {
		t.Fatal("joint NoOp missing")
	}
	if !wait.Equal(s) || wait.Hash() != s.Hash() {
		t.Error("waiting in place should produce an equal state")
	}
}

func TestStaticBoxesBlock(t *testing.T) {
	l := level.MustFromGrid(map[string]string{"blue": "0", "green": "A"},
		[]string{"+++++", "+0A +", "+++++"},
		nil,
	)
	env := NewEnv(l, core.NewDistanceTable(l), l.Boxes)
	if !env.Blocked(core.Position{Row: 1, Col: 2}) {
		t.Error("static box cell not blocked")
	}
	s := NewJointProblem(env, nil).Initial()
	if _, ok := s.BoxAt(core.Position{Row: 1, Col: 2}); ok {
		t.Error("static box tracked by joint state")
	}
	if children := s.Expand(); len(children) != 1 {
		t.Errorf("got %d successors, want only NoOp", len(children))
	}
}
