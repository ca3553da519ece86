package core

import (
	"errors"
	"fmt"
	"sort"
)

// Level is the read-only description of one planning problem: walls,
// initial placements and goals. It is built once at load time and shared by
// every search.
type Level struct {
	Name       string
	Rows, Cols int

	walls []bool

	Agents      []*Agent         // sorted by Number
	AgentStarts map[int]Position // by agent number
	AgentGoals  map[int]Position // optional, by agent number
	Boxes       []*Box           // indexed by Box.ID
	BoxStarts   []Position       // indexed by Box.ID
	BoxGoals    []BoxGoal        // row-major order
}

// NewLevel creates an empty rows x cols level with no walls.
func NewLevel(rows, cols int) *Level {
	return &Level{
		Rows:        rows,
		Cols:        cols,
		walls:       make([]bool, rows*cols),
		AgentStarts: make(map[int]Position),
		AgentGoals:  make(map[int]Position),
	}
}

// InBounds reports whether p lies on the grid.
func (l *Level) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < l.Rows && p.Col >= 0 && p.Col < l.Cols
}

// IsWall reports whether p is a wall. Off-grid cells count as walls.
func (l *Level) IsWall(p Position) bool {
	if !l.InBounds(p) {
		return true
	}
	return l.walls[p.Row*l.Cols+p.Col]
}

// SetWall marks p as a wall.
func (l *Level) SetWall(p Position) {
	if !l.InBounds(p) {
		panic(fmt.Sprintf("wall %v outside %dx%d level", p, l.Rows, l.Cols))
	}
	l.walls[p.Row*l.Cols+p.Col] = true
}

// AddAgent places a new agent. Duplicate numbers are a caller bug.
func (l *Level) AddAgent(number int, color Color, at Position) *Agent {
	if l.AgentByNumber(number) != nil {
		panic(fmt.Sprintf("duplicate agent %d", number))
	}
	a := &Agent{Number: number, Color: color}
	l.Agents = append(l.Agents, a)
	sort.Slice(l.Agents, func(i, j int) bool {
		return l.Agents[i].Number < l.Agents[j].Number
	})
	l.AgentStarts[number] = at
	return a
}

// AddBox places a new box and assigns it the next ID.
func (l *Level) AddBox(letter byte, color Color, at Position) *Box {
	b := &Box{ID: len(l.Boxes), Letter: letter, Color: color}
	l.Boxes = append(l.Boxes, b)
	l.BoxStarts = append(l.BoxStarts, at)
	return b
}

// AddAgentGoal sets the goal cell of an agent.
func (l *Level) AddAgentGoal(number int, at Position) {
	l.AgentGoals[number] = at
}

// AddBoxGoal requires a box of the given letter at a cell.
func (l *Level) AddBoxGoal(letter byte, color Color, at Position) {
	l.BoxGoals = append(l.BoxGoals, BoxGoal{Letter: letter, Color: color, Pos: at})
	sort.SliceStable(l.BoxGoals, func(i, j int) bool {
		return l.BoxGoals[i].Pos.Less(l.BoxGoals[j].Pos)
	})
}

// AgentByNumber finds an agent by number.
func (l *Level) AgentByNumber(n int) *Agent {
	for _, a := range l.Agents {
		if a.Number == n {
			return a
		}
	}
	return nil
}

// AgentStart returns the initial cell of an agent.
func (l *Level) AgentStart(a *Agent) Position {
	p, ok := l.AgentStarts[a.Number]
	if !ok {
		panic(fmt.Sprintf("%v has no start position", a))
	}
	return p
}

// BoxStart returns the initial cell of a box.
func (l *Level) BoxStart(b *Box) Position {
	return l.BoxStarts[b.ID]
}

// AgentGoal returns the goal of an agent, if it has one.
func (l *Level) AgentGoal(a *Agent) (Position, bool) {
	p, ok := l.AgentGoals[a.Number]
	return p, ok
}

// Validate checks that initial placements are on free, distinct cells.
func (l *Level) Validate() error {
	if len(l.Agents) == 0 {
		return errors.New("level has no agents")
	}
	occupied := make(map[Position]string)
	claim := func(p Position, what string) error {
		if l.IsWall(p) {
			return fmt.Errorf("%s placed on wall %v", what, p)
		}
		if prev, ok := occupied[p]; ok {
			return fmt.Errorf("%s and %s share %v", prev, what, p)
		}
		occupied[p] = what
		return nil
	}
	for _, a := range l.Agents {
		if err := claim(l.AgentStart(a), a.String()); err != nil {
			return err
		}
	}
	for _, b := range l.Boxes {
		if err := claim(l.BoxStart(b), b.String()); err != nil {
			return err
		}
	}
	for n, p := range l.AgentGoals {
		if l.AgentByNumber(n) == nil {
			return fmt.Errorf("goal %v for missing agent %d", p, n)
		}
		if l.IsWall(p) {
			return fmt.Errorf("goal of agent %d on wall %v", n, p)
		}
	}
	for _, g := range l.BoxGoals {
		if l.IsWall(g.Pos) {
			return fmt.Errorf("goal %c on wall %v", g.Letter, g.Pos)
		}
	}
	return nil
}

// FreeCells lists every non-wall cell in row-major order.
func (l *Level) FreeCells() []Position {
	var cells []Position
	for r := 0; r < l.Rows; r++ {
		for c := 0; c < l.Cols; c++ {
			p := Position{Row: r, Col: c}
			if !l.IsWall(p) {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// Neighbors returns the non-wall cells adjacent to p in direction order.
func (l *Level) Neighbors(p Position) []Position {
	out := make([]Position, 0, 4)
	for _, d := range Directions {
		q := p.Add(d.Delta())
		if !l.IsWall(q) {
			out = append(out, q)
		}
	}
	return out
}
