package level

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// ErrGenerate is returned when the requested level cannot be laid out.
var ErrGenerate = errors.New("cannot generate level")

// GenParams shape a generated level.
type GenParams struct {
	Seed        uint64  `yaml:"seed"`
	Rows        int     `yaml:"rows"`         // including the border
	Cols        int     `yaml:"cols"`         // including the border
	Agents      int     `yaml:"agents"`       // 1-10
	Colors      int     `yaml:"colors"`       // distinct colors, agents cycle through them
	Boxes       int     `yaml:"boxes"`        // boxes (and box goals) per agent
	WallDensity float64 `yaml:"wall_density"` // fraction of interior cells turned into walls
	AgentGoals  bool    `yaml:"agent_goals"`
}

// Generate lays out a random level. The same params always give the same
// level. Interior walls never disconnect the free cells, so every box goal
// is reachable, though not every level is solvable.
func Generate(p GenParams) (*Spec, error) {
	if p.Agents < 1 || p.Agents > 10 {
		return nil, fmt.Errorf("%w: %d agents, want 1-10", ErrGenerate, p.Agents)
	}
	if p.Rows < 3 || p.Cols < 3 {
		return nil, fmt.Errorf("%w: %dx%d is too small", ErrGenerate, p.Rows, p.Cols)
	}
	colors := max(1, min(p.Colors, p.Agents))
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	g := newGenGrid(p.Rows, p.Cols)
	g.addWalls(rng, p.WallDensity)

	items := p.Agents * (1 + p.Boxes)
	free := g.free()
	if len(free) < items {
		return nil, fmt.Errorf("%w: %d free cells for %d agents and boxes", ErrGenerate, len(free), items)
	}

	initial := g.clone()
	goal := g.clone()
	starts := shuffled(rng, free)
	goals := shuffled(rng, free)

	spec := &Spec{
		Name:   fmt.Sprintf("gen-%dx%d-a%d-b%d-s%d", p.Rows, p.Cols, p.Agents, p.Boxes, p.Seed),
		Colors: make(map[string][]string),
	}
	for i := 0; i < p.Agents; i++ {
		digit := byte('0' + i)
		letter := byte('A' + i)
		name := core.Color(i % colors).String()
		spec.Colors[name] = append(spec.Colors[name], string(digit))
		if p.Boxes > 0 {
			spec.Colors[name] = append(spec.Colors[name], string(letter))
		}

		initial.set(starts[0], digit)
		starts = starts[1:]
		if p.AgentGoals {
			goal.set(goals[0], digit)
			goals = goals[1:]
		}
		for b := 0; b < p.Boxes; b++ {
			initial.set(starts[0], letter)
			goal.set(goals[0], letter)
			starts, goals = starts[1:], goals[1:]
		}
	}

	spec.Initial = initial.String()
	spec.Goal = goal.String()
	return spec, nil
}

type genGrid struct {
	rows, cols int
	cells      []byte
}

func newGenGrid(rows, cols int) *genGrid {
	g := &genGrid{rows: rows, cols: cols, cells: make([]byte, rows*cols)}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ch := byte(' ')
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				ch = '+'
			}
			g.cells[r*cols+c] = ch
		}
	}
	return g
}

func (g *genGrid) clone() *genGrid {
	return &genGrid{rows: g.rows, cols: g.cols, cells: append([]byte(nil), g.cells...)}
}

func (g *genGrid) set(p core.Position, ch byte) { g.cells[p.Row*g.cols+p.Col] = ch }
func (g *genGrid) at(p core.Position) byte      { return g.cells[p.Row*g.cols+p.Col] }

func (g *genGrid) free() []core.Position {
	var out []core.Position
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if p := (core.Position{Row: r, Col: c}); g.at(p) == ' ' {
				out = append(out, p)
			}
		}
	}
	return out
}

// addWalls turns interior cells into walls in random order, skipping any
// that would split the free area.
func (g *genGrid) addWalls(rng *rand.Rand, density float64) {
	candidates := shuffled(rng, g.free())
	want := int(density * float64(len(candidates)))
	for _, p := range candidates {
		if want == 0 {
			return
		}
		g.set(p, '+')
		if g.connected() {
			want--
			continue
		}
		g.set(p, ' ')
	}
}

// connected reports whether every free cell is reachable from the first.
func (g *genGrid) connected() bool {
	free := g.free()
	if len(free) == 0 {
		return true
	}
	seen := map[core.Position]bool{free[0]: true}
	queue := []core.Position{free[0]}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range core.Directions {
			n := p.Add(d.Delta())
			if !seen[n] && g.at(n) == ' ' {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return len(seen) == len(free)
}

func (g *genGrid) String() string {
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		sb.Write(g.cells[r*g.cols : (r+1)*g.cols])
		sb.WriteByte('\n')
	}
	return sb.String()
}

func shuffled(rng *rand.Rand, ps []core.Position) []core.Position {
	out := append([]core.Position(nil), ps...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
