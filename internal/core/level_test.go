package core

import (
	"errors"
	"testing"
)

func TestDistanceTable(t *testing.T) {
	l := gridLevel(
		"+++++++",
		"+0    +",
		"++++ ++",
		"+    ++",
		"+++++++",
	)
	d := NewDistanceTable(l)

	tests := []struct {
		a, b Position
		want int
	}{
		{Position{1, 1}, Position{1, 1}, 0},
		{Position{1, 1}, Position{1, 5}, 4},
		{Position{1, 1}, Position{3, 1}, 8},
		{Position{3, 1}, Position{1, 1}, 8},
		{Position{1, 1}, Position{0, 0}, Unreachable},
	}
	for _, tt := range tests {
		if got := d.Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDistanceTableDisconnected(t *testing.T) {
	l := gridLevel(
		"+++++",
		"+0+ +",
		"+++++",
	)
	d := NewDistanceTable(l)
	if d.Reachable(Position{1, 1}, Position{1, 3}) {
		t.Error("cells separated by a wall should be unreachable")
	}
}

func TestValidate(t *testing.T) {
	l := gridLevel(
		"+++++",
		"+0A +",
		"+++++",
	)
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	l.AddBox('B', Blue, Position{1, 2})
	if err := l.Validate(); err == nil {
		t.Error("expected error for overlapping boxes")
	}

	empty := NewLevel(3, 3)
	if err := empty.Validate(); err == nil {
		t.Error("expected error for level without agents")
	}
}

func TestAssignNearest(t *testing.T) {
	l := gridLevel(
		"+++++++++",
		"+0 A  A1+",
		"+++++++++",
	)
	l.Agents[1].Color = Red
	l.Boxes[1].Color = Red
	l.AddBoxGoal('A', Blue, Position{1, 2})
	l.AddBoxGoal('A', Red, Position{1, 6})

	as := Assign(l, NewDistanceTable(l))
	if len(as.Unassigned) != 0 {
		t.Fatalf("unexpected unassigned goals: %v", as.Unassigned)
	}

	blue := as.Task(l.Agents[0])
	if len(blue.Boxes) != 1 || blue.Boxes[0] != l.Boxes[0] {
		t.Errorf("agent 0 boxes = %v, want [%v]", blue.Boxes, l.Boxes[0])
	}
	if as.Owner(l.Boxes[1]) != l.Agents[1] {
		t.Errorf("box %v owner = %v, want agent 1", l.Boxes[1], as.Owner(l.Boxes[1]))
	}
}

// TestAssignWithoutMatchingAgent covers a box whose color no agent has.
func TestAssignWithoutMatchingAgent(t *testing.T) {
	l := gridLevel(
		"++++++",
		"+0 B +",
		"++++++",
	)
	l.Boxes[0].Color = Green
	l.AddBoxGoal('B', Green, Position{1, 4})

	as := Assign(l, NewDistanceTable(l))
	if len(as.Unassigned) != 1 {
		t.Fatalf("unassigned = %v, want one goal", as.Unassigned)
	}
	if unowned := as.Unowned(l); len(unowned) != 1 || unowned[0] != l.Boxes[0] {
		t.Errorf("unowned = %v", unowned)
	}
}

func TestReplay(t *testing.T) {
	l := gridLevel(
		"++++++",
		"+0A  +",
		"++++++",
	)
	l.AddBoxGoal('A', Blue, Position{1, 4})
	push := PushAction(East, East)
	plan := NewPlan(l.Agents, [][]Action{{push, push}})

	frames, err := Replay(l, plan)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if !frames[2].Satisfied(l.BoxGoals, l.AgentGoals) {
		t.Error("goal not satisfied after two pushes")
	}

	bad := NewPlan(l.Agents, [][]Action{{push, push, push}})
	_, err = Replay(l, bad)
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != 3 {
		t.Errorf("failing step = %d, want 3", stepErr.Step)
	}
}

func TestReplayRejectsSharedDestination(t *testing.T) {
	l := gridLevel(
		"+++++",
		"+0 1+",
		"+++++",
	)
	plan := NewPlan(l.Agents, [][]Action{{MoveAction(East)}, {MoveAction(West)}})
	if _, err := Replay(l, plan); err == nil {
		t.Error("expected clash when both agents enter the same cell")
	}
}

func TestReplayRejectsFollowing(t *testing.T) {
	l := gridLevel(
		"+++++",
		"+01 +",
		"+++++",
	)
	plan := NewPlan(l.Agents, [][]Action{{MoveAction(East)}, {MoveAction(East)}})
	if _, err := Replay(l, plan); err == nil {
		t.Error("expected failure when agent 0 enters the cell agent 1 is leaving")
	}
}

func TestPlanLines(t *testing.T) {
	l := gridLevel(
		"+++++",
		"+0 1+",
		"+++++",
	)
	plan := NewPlan(l.Agents, [][]Action{{MoveAction(East)}, {}})
	lines := plan.Lines()
	if len(lines) != 1 || lines[0] != "Move(E)|NoOp" {
		t.Fatalf("Lines() = %q", lines)
	}
	back, err := ParsePlan(l.Agents, lines)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if back.Steps[0][0] != MoveAction(East) || back.Steps[0][1] != NoOp {
		t.Errorf("parsed steps = %v", back.Steps)
	}
	if plan.Moves() != 1 {
		t.Errorf("Moves() = %d, want 1", plan.Moves())
	}
}
