package search

import (
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

const (
	// WrongBoxPenalty is charged when a box of another letter blocks a goal.
	WrongBoxPenalty = 10
	// GoalWeight makes one satisfied box goal worth more than any distance.
	GoalWeight = 100000
)

// AgentHeuristic estimates the remaining cost of a single-agent state:
// agent-to-goal distance plus, per unsatisfied box goal, the distance from
// the nearest tracked box of that letter.
func AgentHeuristic(s *AgentState) int {
	d := s.space.Env.Distances
	h := 0
	if s.space.HasGoal {
		h += d.Distance(s.pos, s.space.Goal)
	}
	for _, g := range s.space.BoxGoals {
		if b, ok := s.boxes[g.Pos]; ok {
			if b.Letter == g.Letter {
				continue
			}
			h += WrongBoxPenalty
		}
		h += nearestBox(d, s.boxes, g)
	}
	return h
}

func nearestBox(d core.Distances, boxes map[core.Position]*core.Box, g core.BoxGoal) int {
	best := core.Unreachable
	for p, b := range boxes {
		if b.Letter != g.Letter {
			continue
		}
		if dist := d.Distance(p, g.Pos); dist < best {
			best = dist
		}
	}
	return best
}

// JointHeuristic scores a joint state. Unsatisfied goals dominate through
// GoalWeight; distances of boxes to goals, of agents to those boxes and of
// finished agents to their own goals break ties, and every non-NoOp action of
// the last joint step adds one. An agent counts as finished once every box
// goal it owns is met; without owners, once every goal of its color is.
func JointHeuristic(s *JointState) int {
	d := s.prob.Env.Distances
	unsatisfied := 0
	dist := 0
	pendingAgent := make(map[int]bool)
	pendingColor := make(map[core.Color]bool)

	for gi, g := range s.prob.BoxGoals {
		if b, ok := s.boxes[g.Pos]; ok {
			if b.Letter == g.Letter {
				continue
			}
			unsatisfied++ // wrong box surcharge
		}
		unsatisfied++
		if s.prob.Owners != nil {
			pendingAgent[s.prob.Owners[gi]] = true
		} else {
			pendingColor[g.Color] = true
		}

		boxAt, box := s.nearestFreeBox(g)
		if box == nil {
			dist += core.Unreachable
			continue
		}
		dist += d.Distance(boxAt, g.Pos)
		dist += s.nearestAgent(box.Color, boxAt)
	}

	for i, a := range s.prob.Agents {
		goal, ok := s.prob.Goals[a.Number]
		if !ok || pendingAgent[a.Number] || pendingColor[a.Color] {
			continue
		}
		dist += d.Distance(s.agentPos[i], goal)
	}

	moves := 0
	for _, a := range s.joint {
		if a != core.NoOp {
			moves++
		}
	}
	return GoalWeight*unsatisfied + dist + moves
}

// nearestFreeBox finds the closest box of g's letter, preferring boxes that
// do not already satisfy a goal of their own.
func (s *JointState) nearestFreeBox(g core.BoxGoal) (core.Position, *core.Box) {
	d := s.prob.Env.Distances
	var (
		bestAt       core.Position
		bestBox      *core.Box
		best         = core.Unreachable + 1
		fallbackAt   core.Position
		fallbackBox  *core.Box
		fallbackDist = core.Unreachable + 1
	)
	for p, b := range s.boxes {
		if b.Letter != g.Letter {
			continue
		}
		dist := d.Distance(p, g.Pos)
		if s.onOwnGoal(p, b) {
			if dist < fallbackDist {
				fallbackAt, fallbackBox, fallbackDist = p, b, dist
			}
			continue
		}
		if dist < best {
			bestAt, bestBox, best = p, b, dist
		}
	}
	if bestBox == nil {
		return fallbackAt, fallbackBox
	}
	return bestAt, bestBox
}

func (s *JointState) onOwnGoal(p core.Position, b *core.Box) bool {
	for _, g := range s.prob.BoxGoals {
		if g.Pos == p && g.Letter == b.Letter {
			return true
		}
	}
	return false
}

func (s *JointState) nearestAgent(c core.Color, to core.Position) int {
	d := s.prob.Env.Distances
	best := core.Unreachable
	for i, a := range s.prob.Agents {
		if a.Color != c {
			continue
		}
		if dist := d.Distance(s.agentPos[i], to); dist < best {
			best = dist
		}
	}
	return best
}
