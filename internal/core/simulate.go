package core

import "fmt"

// Snapshot is the full occupancy of a level at one time step.
type Snapshot struct {
	level    *Level
	agentPos []Position // aligned with Level.Agents
	boxPos   []Position // indexed by Box.ID
	agentAt  map[Position]int
	boxAt    map[Position]*Box
}

// InitialSnapshot returns the level's starting occupancy.
func InitialSnapshot(l *Level) *Snapshot {
	s := &Snapshot{
		level:    l,
		agentPos: make([]Position, len(l.Agents)),
		boxPos:   make([]Position, len(l.Boxes)),
		agentAt:  make(map[Position]int, len(l.Agents)),
		boxAt:    make(map[Position]*Box, len(l.Boxes)),
	}
	for i, a := range l.Agents {
		p := l.AgentStart(a)
		s.agentPos[i] = p
		s.agentAt[p] = i
	}
	for _, b := range l.Boxes {
		p := l.BoxStart(b)
		s.boxPos[b.ID] = p
		s.boxAt[p] = b
	}
	return s
}

// AgentPos returns the cell of agent index i.
func (s *Snapshot) AgentPos(i int) Position { return s.agentPos[i] }

// BoxPos returns the cell of a box.
func (s *Snapshot) BoxPos(b *Box) Position { return s.boxPos[b.ID] }

// AgentAt returns the agent index standing on p.
func (s *Snapshot) AgentAt(p Position) (int, bool) {
	i, ok := s.agentAt[p]
	return i, ok
}

// Free reports whether p holds no wall, box or agent.
func (s *Snapshot) Free(p Position) bool {
	if s.level.IsWall(p) {
		return false
	}
	if _, ok := s.boxAt[p]; ok {
		return false
	}
	_, ok := s.agentAt[p]
	return !ok
}

// BoxAt returns the box on p.
func (s *Snapshot) BoxAt(p Position) (*Box, bool) {
	b, ok := s.boxAt[p]
	return b, ok
}

// StepError reports the first illegal action of a replayed plan.
type StepError struct {
	Step   int // 1-based joint step
	Agent  *Agent
	Action Action
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v cannot %v: %s", e.Step, e.Agent, e.Action, e.Reason)
}

// Apply executes one joint action against s. All preconditions are checked
// against s itself, so an agent may not enter a cell vacated in the same step.
func (s *Snapshot) Apply(step int, joint []Action) (*Snapshot, error) {
	if len(joint) != len(s.agentPos) {
		return nil, fmt.Errorf("step %d: %d actions for %d agents", step, len(joint), len(s.agentPos))
	}
	effects := make([]Effect, len(joint))
	for i, a := range joint {
		agent := s.level.Agents[i]
		e, ok := Applicable(s, agent, s.agentPos[i], a)
		if !ok {
			return nil, &StepError{Step: step, Agent: agent, Action: a, Reason: "preconditions not met"}
		}
		effects[i] = e
	}
	for i := range effects {
		for j := i + 1; j < len(effects); j++ {
			if effects[i].Clashes(effects[j]) {
				return nil, &StepError{
					Step:   step,
					Agent:  s.level.Agents[j],
					Action: joint[j],
					Reason: fmt.Sprintf("clashes with %v", s.level.Agents[i]),
				}
			}
		}
	}

	next := &Snapshot{
		level:    s.level,
		agentPos: append([]Position(nil), s.agentPos...),
		boxPos:   append([]Position(nil), s.boxPos...),
		agentAt:  make(map[Position]int, len(s.agentAt)),
		boxAt:    make(map[Position]*Box, len(s.boxAt)),
	}
	for i, e := range effects {
		next.agentPos[i] = e.AgentTo
		if e.MovesBox {
			next.boxPos[e.Box.ID] = e.BoxTo
		}
	}
	for i, p := range next.agentPos {
		next.agentAt[p] = i
	}
	for _, b := range s.level.Boxes {
		next.boxAt[next.boxPos[b.ID]] = b
	}
	return next, nil
}

// Satisfied reports whether every listed box goal and agent goal holds.
func (s *Snapshot) Satisfied(boxGoals []BoxGoal, agentGoals map[int]Position) bool {
	for _, g := range boxGoals {
		b, ok := s.boxAt[g.Pos]
		if !ok || b.Letter != g.Letter {
			return false
		}
	}
	for i, a := range s.level.Agents {
		if goal, ok := agentGoals[a.Number]; ok && s.agentPos[i] != goal {
			return false
		}
	}
	return true
}

// Replay runs a plan from the initial snapshot and returns every
// intermediate snapshot, starting with time 0.
func Replay(l *Level, p *Plan) ([]*Snapshot, error) {
	cur := InitialSnapshot(l)
	frames := []*Snapshot{cur}
	for t, joint := range p.Steps {
		next, err := cur.Apply(t+1, joint)
		if err != nil {
			return frames, err
		}
		frames = append(frames, next)
		cur = next
	}
	return frames, nil
}
