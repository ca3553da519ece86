package state

import (
	"context"
	"testing"
	"time"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

func pushLevel() *core.Level {
	return level.MustFromGrid(map[string]string{"blue": "0A"},
		[]string{"++++++", "+0A  +", "++++++"},
		[]string{"++++++", "+   A+", "++++++"},
	)
}

func solvedState(t *testing.T) (*State, *algo.Problem) {
	t.Helper()
	l := pushLevel()
	p := algo.NewProblem(l)
	res := algo.NewCBS(20).Solve(context.Background(), p)
	if !res.Solved {
		t.Fatalf("push level not solved: %s", res.Reason)
	}
	st := NewState(l)
	st.SetResult(res)
	return st, p
}

func TestSetResultReplaysFrames(t *testing.T) {
	st, p := solvedState(t)
	if st.ReplayErr != nil {
		t.Fatalf("ReplayErr = %v", st.ReplayErr)
	}
	if len(st.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(st.Frames))
	}
	if st.Playback.MaxTime != 2 {
		t.Errorf("MaxTime = %v, want 2", st.Playback.MaxTime)
	}
	if st.Satisfied(p) {
		t.Error("goal satisfied at step 0")
	}
	st.Playback.SetTime(2)
	if !st.Satisfied(p) {
		t.Error("goal not satisfied at the end")
	}
}

func TestInterpolation(t *testing.T) {
	st, _ := solvedState(t)
	st.Playback.SetTime(0.5)

	agent := st.AgentPositions()[0]
	if agent != (Point{Row: 1, Col: 1.5}) {
		t.Errorf("agent at t=0.5 = %v, want (1, 1.5)", agent)
	}
	box := st.BoxPositions()[0]
	if box != (Point{Row: 1, Col: 2.5}) {
		t.Errorf("box at t=0.5 = %v, want (1, 2.5)", box)
	}

	st.Playback.SetTime(99)
	if got := st.AgentPositions()[0]; got != (Point{Row: 1, Col: 3}) {
		t.Errorf("agent past the end = %v, want (1, 3)", got)
	}
}

func TestPathHistoryAndFuture(t *testing.T) {
	st, _ := solvedState(t)
	st.Playback.SetTime(1.5)

	history := st.PathHistory(0)
	want := []Point{{1, 1}, {1, 2}, {1, 2.5}}
	if len(history) != len(want) {
		t.Fatalf("history = %v, want %v", history, want)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %v, want %v", i, history[i], want[i])
		}
	}

	future := st.FuturePath(0)
	if len(future) != 1 || future[0] != (Point{Row: 1, Col: 3}) {
		t.Errorf("future = %v, want [(1, 3)]", future)
	}
}

func TestUnsolvedResultKeepsInitialFrame(t *testing.T) {
	st := NewState(pushLevel())
	st.SetResult(&algo.Result{Reason: algo.ReasonBudget})
	if len(st.Frames) != 1 || st.Playback.MaxTime != 0 {
		t.Errorf("frames = %d, MaxTime = %v", len(st.Frames), st.Playback.MaxTime)
	}
	if st.PathHistory(0) != nil {
		t.Error("history without a plan")
	}
}

func TestPlaybackAdvance(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewPlaybackState(4)
	p.now = func() time.Time { return clock }

	p.Play()
	clock = clock.Add(time.Second)
	p.Advance()
	if p.CurrentTime != 2 {
		t.Errorf("after 1s at 2 steps/s: t = %v, want 2", p.CurrentTime)
	}

	clock = clock.Add(5 * time.Second)
	p.Advance()
	if p.CurrentTime != 4 || p.Playing {
		t.Errorf("past the end: t = %v playing = %v", p.CurrentTime, p.Playing)
	}

	p.TogglePlay()
	if p.CurrentTime != 0 || !p.Playing {
		t.Errorf("toggle at end should rewind and play: t = %v playing = %v", p.CurrentTime, p.Playing)
	}
}

func TestPlaybackStepping(t *testing.T) {
	p := NewPlaybackState(3)
	p.SetTime(1.4)

	p.StepForward()
	if p.CurrentTime != 2 {
		t.Errorf("StepForward from 1.4 = %v, want 2", p.CurrentTime)
	}
	p.StepBack()
	if p.CurrentTime != 1 {
		t.Errorf("StepBack from 2 = %v, want 1", p.CurrentTime)
	}
	p.SetTime(1.4)
	p.StepBack()
	if p.CurrentTime != 1 {
		t.Errorf("StepBack from 1.4 = %v, want 1", p.CurrentTime)
	}
	p.SetTime(-3)
	if p.CurrentTime != 0 {
		t.Errorf("SetTime(-3) = %v, want 0", p.CurrentTime)
	}

	p.SetSpeed(100)
	if p.Speed != 20 {
		t.Errorf("SetSpeed(100) = %v, want 20", p.Speed)
	}
}

func TestAlgoStateTree(t *testing.T) {
	as := NewAlgoState()
	as.Start()
	if !as.IsActive() {
		t.Fatal("not active after Start")
	}

	c := search.Constraint{Agent: 1, Pos: core.Position{Row: 2, Col: 2}, Time: 1}
	conflict := &algo.Conflict{Kind: algo.PositionConflict, Agent1: 0, Agent2: 1}
	as.ExpandNode(algo.NodeInfo{ID: 0, ParentID: -1})
	as.RecordConflict(conflict)
	as.AddChild(0, 1, c)
	as.AddChild(0, 2, c)
	as.RecordPruned()
	as.ExpandNode(algo.NodeInfo{ID: 2, ParentID: 0, Cost: 5})
	as.MarkSolution()
	as.Stop()

	nodes := as.GetNodes()
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(nodes))
	}
	if nodes[0].Conflict != conflict || nodes[1].ParentID != 0 || *nodes[1].Added != c {
		t.Errorf("tree = %+v", nodes)
	}
	if !nodes[2].IsSolution || nodes[2].Cost != 5 {
		t.Errorf("solution node = %+v", nodes[2])
	}
	expanded, conflicts, pruned, open := as.Counters()
	if expanded != 2 || conflicts != 1 || pruned != 1 || open != 1 {
		t.Errorf("counters = %d %d %d %d, want 2 1 1 1", expanded, conflicts, pruned, open)
	}
	if as.CurrentConflict() != nil || as.IsActive() {
		t.Error("solution should clear the conflict and Stop deactivate")
	}
}
