// Package state manages the visualization state.
package state

import (
	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// Point is a fractional grid position, in cells.
type Point struct {
	Row, Col float64
}

func pointOf(p core.Position) Point {
	return Point{Row: float64(p.Row), Col: float64(p.Col)}
}

func lerp(a, b Point, alpha float64) Point {
	return Point{
		Row: a.Row + alpha*(b.Row-a.Row),
		Col: a.Col + alpha*(b.Col-a.Col),
	}
}

// State holds all visualization state. It is owned by the UI goroutine;
// only Algo is shared with a running solver.
type State struct {
	Level     *core.Level
	Result    *algo.Result
	Frames    []*core.Snapshot // frame t is the state after t joint steps
	ReplayErr error
	Playback  *PlaybackState
	Algo      *AlgoState
}

// NewState creates the state for l with no plan yet.
func NewState(l *core.Level) *State {
	return &State{
		Level:    l,
		Frames:   []*core.Snapshot{core.InitialSnapshot(l)},
		Playback: NewPlaybackState(0),
		Algo:     NewAlgoState(),
	}
}

// SetResult installs a solver result. A solved plan is replayed into frames;
// an unsolved one leaves only the initial frame.
func (s *State) SetResult(res *algo.Result) {
	s.Result = res
	s.ReplayErr = nil
	s.Frames = []*core.Snapshot{core.InitialSnapshot(s.Level)}
	if res != nil && res.Solved {
		s.Frames, s.ReplayErr = core.Replay(s.Level, res.Plan)
	}
	s.Playback.SetLength(len(s.Frames) - 1)
}

// frameAt returns the frames bracketing time t and the fraction between them.
func (s *State) frameAt(t float64) (from, to *core.Snapshot, alpha float64) {
	last := len(s.Frames) - 1
	if t <= 0 || last == 0 {
		return s.Frames[0], s.Frames[0], 0
	}
	if t >= float64(last) {
		return s.Frames[last], s.Frames[last], 0
	}
	i := int(t)
	return s.Frames[i], s.Frames[i+1], t - float64(i)
}

// AgentPositions returns every agent's interpolated position at the current
// playback time, aligned with Level.Agents.
func (s *State) AgentPositions() []Point {
	from, to, alpha := s.frameAt(s.Playback.CurrentTime)
	out := make([]Point, len(s.Level.Agents))
	for i := range out {
		out[i] = lerp(pointOf(from.AgentPos(i)), pointOf(to.AgentPos(i)), alpha)
	}
	return out
}

// BoxPositions returns every box's interpolated position, indexed by Box.ID.
func (s *State) BoxPositions() []Point {
	from, to, alpha := s.frameAt(s.Playback.CurrentTime)
	out := make([]Point, len(s.Level.Boxes))
	for _, b := range s.Level.Boxes {
		out[b.ID] = lerp(pointOf(from.BoxPos(b)), pointOf(to.BoxPos(b)), alpha)
	}
	return out
}

// PathHistory returns agent i's visited cells up to the current time,
// ending at its interpolated position.
func (s *State) PathHistory(i int) []Point {
	if len(s.Frames) < 2 {
		return nil
	}
	step := s.Playback.Step()
	history := make([]Point, 0, step+2)
	for t := 0; t <= step && t < len(s.Frames); t++ {
		history = append(history, pointOf(s.Frames[t].AgentPos(i)))
	}
	return append(history, s.AgentPositions()[i])
}

// FuturePath returns agent i's cells from the next step to the end.
func (s *State) FuturePath(i int) []Point {
	var out []Point
	for t := s.Playback.Step() + 1; t < len(s.Frames); t++ {
		out = append(out, pointOf(s.Frames[t].AgentPos(i)))
	}
	return out
}

// Satisfied reports whether the current whole-step frame meets every
// assigned goal.
func (s *State) Satisfied(p *algo.Problem) bool {
	step := min(s.Playback.Step(), len(s.Frames)-1)
	return s.Frames[step].Satisfied(p.AssignedGoals(), s.Level.AgentGoals)
}
