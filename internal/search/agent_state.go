package search

import (
	"sort"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// Env is the read-only level context shared by every search over one level.
type Env struct {
	Level     *core.Level
	Distances core.Distances
	static    map[core.Position]*core.Box
}

// NewEnv binds a level to its distance table. Static boxes stay at their
// start cells and block every agent.
func NewEnv(level *core.Level, dist core.Distances, static []*core.Box) *Env {
	env := &Env{
		Level:     level,
		Distances: dist,
		static:    make(map[core.Position]*core.Box, len(static)),
	}
	for _, b := range static {
		env.static[level.BoxStart(b)] = b
	}
	return env
}

// Blocked reports whether p is a wall or holds a static box.
func (e *Env) Blocked(p core.Position) bool {
	if e.Level.IsWall(p) {
		return true
	}
	_, ok := e.static[p]
	return ok
}

// StaticBoxes returns the static boxes keyed by cell.
func (e *Env) StaticBoxes() map[core.Position]*core.Box {
	return e.static
}

// AgentProblem is the input of one single-agent search.
type AgentProblem struct {
	Env         *Env
	Agent       *core.Agent
	Start       core.Position
	Goal        core.Position
	HasGoal     bool
	Boxes       []*core.Box // tracked boxes, at their level start cells
	BoxGoals    []core.BoxGoal
	Constraints []Constraint // constraints on Agent only
	MaxTime     int          // trajectory horizon, 0 = unbounded
}

// agentSpace holds what every state of one single-agent search shares.
type agentSpace struct {
	*AgentProblem
	constraints constraintIndex
}

// Initial builds the root state at time 0.
func (p *AgentProblem) Initial() *AgentState {
	space := &agentSpace{
		AgentProblem: p,
		constraints:  newConstraintIndex(ForAgent(p.Constraints, p.Agent.Number)),
	}
	boxes := make(map[core.Position]*core.Box, len(p.Boxes))
	for _, b := range p.Boxes {
		boxes[p.Env.Level.BoxStart(b)] = b
	}
	return newAgentState(space, nil, core.NoOp, p.Start, boxes, 0)
}

// AgentState is one node of a single-agent search: the agent's cell, the
// cells of the boxes it tracks, and how it got there. States are immutable.
type AgentState struct {
	space  *agentSpace
	parent *AgentState
	action core.Action
	pos    core.Position
	boxes  map[core.Position]*core.Box
	time   int
	hash   uint64
}

func newAgentState(space *agentSpace, parent *AgentState, a core.Action, pos core.Position, boxes map[core.Position]*core.Box, t int) *AgentState {
	s := &AgentState{
		space:  space,
		parent: parent,
		action: a,
		pos:    pos,
		boxes:  boxes,
		time:   t,
	}
	s.hash = cellHash(tagAgent, pos, space.Agent.Number) +
		cellHash(tagTime, core.Position{}, space.constraints.keyTime(t)) +
		boxesHash(boxes)
	return s
}

// Pos returns the agent's cell.
func (s *AgentState) Pos() core.Position { return s.pos }

// Time returns the time step of the state.
func (s *AgentState) Time() int { return s.time }

// Action returns the action that produced the state (NoOp at the root).
func (s *AgentState) Action() core.Action { return s.action }

// Parent returns the predecessor, nil at the root.
func (s *AgentState) Parent() *AgentState { return s.parent }

// Agent returns the searching agent.
func (s *AgentState) Agent() *core.Agent { return s.space.Agent }

// Free reports whether p is enterable: not a wall, static box or tracked box.
func (s *AgentState) Free(p core.Position) bool {
	if s.space.Env.Blocked(p) {
		return false
	}
	_, ok := s.boxes[p]
	return !ok
}

// BoxAt returns the tracked box on p.
func (s *AgentState) BoxAt(p core.Position) (*core.Box, bool) {
	b, ok := s.boxes[p]
	return b, ok
}

// Occupied lists the agent's cell followed by its boxes in row-major order.
func (s *AgentState) Occupied() []core.Position {
	out := make([]core.Position, 0, len(s.boxes)+1)
	out = append(out, s.pos)
	boxStart := len(out)
	for p := range s.boxes {
		out = append(out, p)
	}
	boxes := out[boxStart:]
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Less(boxes[j]) })
	return out
}

func (s *AgentState) occupies(p core.Position) bool {
	if s.pos == p {
		return true
	}
	_, ok := s.boxes[p]
	return ok
}

// Violates reports whether a constraint at this time step forbids a cell the
// state occupies.
func (s *AgentState) Violates() bool {
	for _, p := range s.space.constraints.byTime[s.time] {
		if s.occupies(p) {
			return true
		}
	}
	return false
}

// Satisfied reports whether the agent goal and all box goals hold.
func (s *AgentState) Satisfied() bool {
	if s.space.HasGoal && s.pos != s.space.Goal {
		return false
	}
	for _, g := range s.space.BoxGoals {
		b, ok := s.boxes[g.Pos]
		if !ok || b.Letter != g.Letter {
			return false
		}
	}
	return true
}

// IsGoal requires the goals to hold and no constraint to lie in the future,
// so the agent can wait in place for the rest of the plan.
func (s *AgentState) IsGoal() bool {
	return s.time >= s.space.constraints.last && s.Satisfied()
}

// Expand generates successors in catalog order, dropping those that break a
// constraint at their time step.
func (s *AgentState) Expand() []*AgentState {
	if s.space.MaxTime > 0 && s.time >= s.space.MaxTime {
		return nil
	}
	var out []*AgentState
	for _, a := range core.Actions() {
		e, ok := core.Applicable(s, s.space.Agent, s.pos, a)
		if !ok {
			continue
		}
		boxes := s.boxes
		if e.MovesBox {
			boxes = make(map[core.Position]*core.Box, len(s.boxes))
			for p, b := range s.boxes {
				boxes[p] = b
			}
			delete(boxes, e.BoxFrom)
			boxes[e.BoxTo] = e.Box
		}
		child := newAgentState(s.space, s, a, e.AgentTo, boxes, s.time+1)
		if child.Violates() {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (s *AgentState) Hash() uint64 { return s.hash }

// Equal compares agent cell, box placement and the constraint-relevant time.
func (s *AgentState) Equal(o *AgentState) bool {
	if s.hash != o.hash || s.pos != o.pos {
		return false
	}
	if s.space.constraints.keyTime(s.time) != o.space.constraints.keyTime(o.time) {
		return false
	}
	return boxesEqual(s.boxes, o.boxes)
}

// Path returns the states from the root to s.
func (s *AgentState) Path() []*AgentState {
	var path []*AgentState
	for n := s; n != nil; n = n.parent {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Actions returns the actions leading from the root to s.
func (s *AgentState) Actions() []core.Action {
	path := s.Path()
	out := make([]core.Action, 0, len(path)-1)
	for _, n := range path[1:] {
		out = append(out, n.action)
	}
	return out
}
