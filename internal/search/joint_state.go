package search

import (
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// JointProblem is the input of a search over joint actions of all agents.
type JointProblem struct {
	Env      *Env
	Agents   []*core.Agent // level order
	BoxGoals []core.BoxGoal
	Owners   []int                 // agent number per box goal; nil means any agent of its color
	Goals    map[int]core.Position // agent goals by number
}

// NewJointProblem plans for every agent in env's level. Box goals no agent
// can serve should be filtered out by the caller.
func NewJointProblem(env *Env, boxGoals []core.BoxGoal) *JointProblem {
	return &JointProblem{
		Env:      env,
		Agents:   env.Level.Agents,
		BoxGoals: boxGoals,
		Goals:    env.Level.AgentGoals,
	}
}

// NewTaskProblem plans the box goals of the given tasks, remembering which
// agent owns each one.
func NewTaskProblem(env *Env, tasks []*core.AgentTask) *JointProblem {
	p := NewJointProblem(env, nil)
	p.Owners = []int{}
	for _, t := range tasks {
		for _, g := range t.BoxGoals {
			p.BoxGoals = append(p.BoxGoals, g)
			p.Owners = append(p.Owners, t.Agent.Number)
		}
	}
	return p
}

// Initial builds the root state from the level's start placements. Static
// boxes of the env stay out of the state.
func (p *JointProblem) Initial() *JointState {
	l := p.Env.Level
	agentPos := make([]core.Position, len(p.Agents))
	for i, a := range p.Agents {
		agentPos[i] = l.AgentStart(a)
	}
	boxes := make(map[core.Position]*core.Box, len(l.Boxes))
	for _, b := range l.Boxes {
		at := l.BoxStart(b)
		if p.Env.Blocked(at) {
			continue
		}
		boxes[at] = b
	}
	return newJointState(p, nil, make([]core.Action, len(p.Agents)), agentPos, boxes, 0)
}

// JointState is one node of the joint search: every agent moves in lockstep.
type JointState struct {
	prob     *JointProblem
	parent   *JointState
	joint    []core.Action // aligned with prob.Agents
	agentPos []core.Position
	agentAt  map[core.Position]int
	boxes    map[core.Position]*core.Box
	time     int
	hash     uint64
}

func newJointState(p *JointProblem, parent *JointState, joint []core.Action, agentPos []core.Position, boxes map[core.Position]*core.Box, t int) *JointState {
	s := &JointState{
		prob:     p,
		parent:   parent,
		joint:    joint,
		agentPos: agentPos,
		agentAt:  make(map[core.Position]int, len(agentPos)),
		boxes:    boxes,
		time:     t,
	}
	for i, pos := range agentPos {
		s.agentAt[pos] = i
		s.hash += cellHash(tagAgent, pos, i)
	}
	s.hash += boxesHash(boxes)
	return s
}

// AgentPos returns the cell of agent index i.
func (s *JointState) AgentPos(i int) core.Position { return s.agentPos[i] }

// Time returns the time step.
func (s *JointState) Time() int { return s.time }

// Joint returns the joint action that produced the state.
func (s *JointState) Joint() []core.Action { return s.joint }

// Parent returns the predecessor, nil at the root.
func (s *JointState) Parent() *JointState { return s.parent }

// Free reports whether p holds no wall, static box, box or agent.
func (s *JointState) Free(p core.Position) bool {
	if s.prob.Env.Blocked(p) {
		return false
	}
	if _, ok := s.boxes[p]; ok {
		return false
	}
	_, ok := s.agentAt[p]
	return !ok
}

// BoxAt returns the box on p.
func (s *JointState) BoxAt(p core.Position) (*core.Box, bool) {
	b, ok := s.boxes[p]
	return b, ok
}

// IsGoal reports whether every box goal and agent goal holds.
func (s *JointState) IsGoal() bool {
	for _, g := range s.prob.BoxGoals {
		b, ok := s.boxes[g.Pos]
		if !ok || b.Letter != g.Letter {
			return false
		}
	}
	for i, a := range s.prob.Agents {
		if goal, ok := s.prob.Goals[a.Number]; ok && s.agentPos[i] != goal {
			return false
		}
	}
	return true
}

// Expand forms the Cartesian product of every agent's applicable actions and
// keeps the tuples in which no two agents target the same cell or box. With k
// agents this is up to 29^k candidates per expansion; the joint model has no
// cheaper exact successor relation.
func (s *JointState) Expand() []*JointState {
	n := len(s.prob.Agents)
	options := make([][]core.Effect, n)
	actions := make([][]core.Action, n)
	for i, agent := range s.prob.Agents {
		for _, a := range core.Actions() {
			if e, ok := core.Applicable(s, agent, s.agentPos[i], a); ok {
				options[i] = append(options[i], e)
				actions[i] = append(actions[i], a)
			}
		}
	}

	var out []*JointState
	idx := make([]int, n)
	for {
		if !s.clashes(options, idx) {
			out = append(out, s.apply(options, actions, idx))
		}

		// Advance the odometer; the last agent varies fastest.
		i := n - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(options[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

func (s *JointState) clashes(options [][]core.Effect, idx []int) bool {
	for i := range idx {
		for j := i + 1; j < len(idx); j++ {
			if options[i][idx[i]].Clashes(options[j][idx[j]]) {
				return true
			}
		}
	}
	return false
}

func (s *JointState) apply(options [][]core.Effect, actions [][]core.Action, idx []int) *JointState {
	joint := make([]core.Action, len(idx))
	agentPos := make([]core.Position, len(idx))
	boxes := s.boxes
	copied := false
	for i, k := range idx {
		e := options[i][k]
		joint[i] = actions[i][k]
		agentPos[i] = e.AgentTo
		if !e.MovesBox {
			continue
		}
		if !copied {
			boxes = make(map[core.Position]*core.Box, len(s.boxes))
			for p, b := range s.boxes {
				boxes[p] = b
			}
			copied = true
		}
		delete(boxes, e.BoxFrom)
		boxes[e.BoxTo] = e.Box
	}
	return newJointState(s.prob, s, joint, agentPos, boxes, s.time+1)
}

func (s *JointState) Hash() uint64 { return s.hash }

// Equal compares agent cells and box placement; time is not part of the key.
func (s *JointState) Equal(o *JointState) bool {
	if s.hash != o.hash || len(s.agentPos) != len(o.agentPos) {
		return false
	}
	for i := range s.agentPos {
		if s.agentPos[i] != o.agentPos[i] {
			return false
		}
	}
	return boxesEqual(s.boxes, o.boxes)
}

// Plan extracts the joint plan from the root to s.
func (s *JointState) Plan() *core.Plan {
	var steps [][]core.Action
	for n := s; n.parent != nil; n = n.parent {
		steps = append(steps, n.joint)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return &core.Plan{Agents: s.prob.Agents, Steps: steps}
}
