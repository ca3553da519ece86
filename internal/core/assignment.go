package core

// AgentTask is the work delegated to one agent: the boxes it owns, the box
// goals it must satisfy and its optional own goal.
type AgentTask struct {
	Agent    *Agent
	Boxes    []*Box
	BoxGoals []BoxGoal
	Goal     Position
	HasGoal  bool
}

// Assignment maps every agent to its task. Box goals no agent can serve are
// kept in Unassigned.
type Assignment struct {
	Tasks      []*AgentTask // aligned with Level.Agents
	Unassigned []BoxGoal
	owner      map[int]*Agent // box ID -> owning agent
}

// Task returns the task of an agent.
func (as *Assignment) Task(a *Agent) *AgentTask {
	for _, t := range as.Tasks {
		if t.Agent == a {
			return t
		}
	}
	return nil
}

// Owner returns the agent responsible for moving b, or nil.
func (as *Assignment) Owner(b *Box) *Agent {
	return as.owner[b.ID]
}

// Unowned lists boxes no agent may move; they act as static obstacles.
func (as *Assignment) Unowned(l *Level) []*Box {
	var out []*Box
	for _, b := range l.Boxes {
		if as.owner[b.ID] == nil {
			out = append(out, b)
		}
	}
	return out
}

// Assign greedily pairs each box goal with the nearest free box of its
// letter and that box with the nearest agent of its color.
func Assign(l *Level, d Distances) *Assignment {
	as := &Assignment{owner: make(map[int]*Agent)}
	byAgent := make(map[*Agent]*AgentTask, len(l.Agents))
	for _, a := range l.Agents {
		t := &AgentTask{Agent: a}
		t.Goal, t.HasGoal = l.AgentGoal(a)
		as.Tasks = append(as.Tasks, t)
		byAgent[a] = t
	}

	used := make(map[int]bool)
	for _, g := range l.BoxGoals {
		// Step 1: nearest unused box with the goal's letter
		var box *Box
		best := Unreachable
		for _, b := range l.Boxes {
			if used[b.ID] || b.Letter != g.Letter {
				continue
			}
			if dist := d.Distance(l.BoxStart(b), g.Pos); dist < best {
				best, box = dist, b
			}
		}
		if box == nil {
			as.Unassigned = append(as.Unassigned, g)
			continue
		}

		// Step 2: nearest agent able to move it
		var agent *Agent
		best = Unreachable
		for _, a := range l.Agents {
			if a.Color != box.Color {
				continue
			}
			if dist := d.Distance(l.AgentStart(a), l.BoxStart(box)); dist < best {
				best, agent = dist, a
			}
		}
		if agent == nil {
			as.Unassigned = append(as.Unassigned, g)
			continue
		}

		used[box.ID] = true
		as.owner[box.ID] = agent
		t := byAgent[agent]
		t.Boxes = append(t.Boxes, box)
		t.BoxGoals = append(t.BoxGoals, g)
	}
	return as
}
