package core

import (
	"fmt"
	"strings"
)

// Plan is a joint-action sequence. Steps[t][i] is the action Agents[i]
// takes at time step t+1.
type Plan struct {
	Agents []*Agent
	Steps  [][]Action
}

// NewPlan builds a joint plan from per-agent action lists, padding shorter
// lists with NoOp.
func NewPlan(agents []*Agent, perAgent [][]Action) *Plan {
	if len(agents) != len(perAgent) {
		panic(fmt.Sprintf("plan for %d agents given %d action lists", len(agents), len(perAgent)))
	}
	length := 0
	for _, acts := range perAgent {
		if len(acts) > length {
			length = len(acts)
		}
	}
	steps := make([][]Action, length)
	for t := range steps {
		steps[t] = make([]Action, len(agents))
		for i, acts := range perAgent {
			if t < len(acts) {
				steps[t][i] = acts[t]
			}
		}
	}
	return &Plan{Agents: agents, Steps: steps}
}

// Len returns the number of joint steps.
func (p *Plan) Len() int {
	return len(p.Steps)
}

// AgentActions returns the action sequence of agent index i.
func (p *Plan) AgentActions(i int) []Action {
	out := make([]Action, len(p.Steps))
	for t, step := range p.Steps {
		out[t] = step[i]
	}
	return out
}

// Moves counts non-NoOp actions across the plan.
func (p *Plan) Moves() int {
	n := 0
	for _, step := range p.Steps {
		for _, a := range step {
			if a != NoOp {
				n++
			}
		}
	}
	return n
}

// Lines renders each joint step as "a0|a1|...".
func (p *Plan) Lines() []string {
	lines := make([]string, len(p.Steps))
	var sb strings.Builder
	for t, step := range p.Steps {
		sb.Reset()
		for i, a := range step {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(a.String())
		}
		lines[t] = sb.String()
	}
	return lines
}

// ParsePlan reads lines produced by Lines back into a plan.
func ParsePlan(agents []*Agent, lines []string) (*Plan, error) {
	plan := &Plan{Agents: agents}
	for n, line := range lines {
		fields := strings.Split(strings.TrimSpace(line), "|")
		if len(fields) != len(agents) {
			return nil, fmt.Errorf("line %d: %d actions for %d agents", n+1, len(fields), len(agents))
		}
		step := make([]Action, len(fields))
		for i, f := range fields {
			a, err := ParseAction(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			step[i] = a
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}
