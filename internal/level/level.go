// Package level loads level descriptions into core.Level records.
//
// A level file is YAML with a color table and two grids of equal height:
//
//	name: SAExample
//	colors:
//	  blue: ["0", "A"]
//	initial: |
//	  +++++
//	  +0 A+
//	  +++++
//	goal: |
//	  +++++
//	  +  A+
//	  +++++
//
// Grid symbols: '+' wall, ' ' free, '0'-'9' agents, 'A'-'Z' boxes. In the
// goal grid digits mark agent goals and letters box goals.
package level

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

var (
	ErrNoAgents     = errors.New("level has no agents")
	ErrUnknownColor = errors.New("unknown color")
	ErrShape        = errors.New("malformed grid")
	ErrSymbol       = errors.New("unknown grid symbol")
)

// Spec is the on-disk level description.
type Spec struct {
	Name    string              `yaml:"name"`
	Colors  map[string][]string `yaml:"colors"`
	Initial string              `yaml:"initial"`
	Goal    string              `yaml:"goal"`
}

// Load reads a level from a YAML file.
func Load(path string) (*core.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML level.
func Parse(data []byte) (*core.Level, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}
	return spec.Build()
}

// Build converts the spec into a validated level.
func (s *Spec) Build() (*core.Level, error) {
	colors, err := s.colorTable()
	if err != nil {
		return nil, err
	}
	initial := splitGrid(s.Initial)
	goal := splitGrid(s.Goal)
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: empty initial grid", ErrShape)
	}
	if len(goal) > 0 && len(goal) != len(initial) {
		return nil, fmt.Errorf("%w: initial has %d rows, goal has %d", ErrShape, len(initial), len(goal))
	}

	cols := 0
	for _, row := range initial {
		if len(row) > cols {
			cols = len(row)
		}
	}
	l := core.NewLevel(len(initial), cols)
	l.Name = s.Name

	for r, row := range initial {
		for c := 0; c < len(row); c++ {
			p := core.Position{Row: r, Col: c}
			ch := row[c]
			switch {
			case ch == '+':
				l.SetWall(p)
			case ch == ' ':
			case isAgent(ch):
				color, ok := colors[ch]
				if !ok {
					return nil, fmt.Errorf("%w: agent %c has no color", ErrUnknownColor, ch)
				}
				if l.AgentByNumber(int(ch-'0')) != nil {
					return nil, fmt.Errorf("%w: agent %c appears twice", ErrShape, ch)
				}
				l.AddAgent(int(ch-'0'), color, p)
			case isBox(ch):
				color, ok := colors[ch]
				if !ok {
					return nil, fmt.Errorf("%w: box %c has no color", ErrUnknownColor, ch)
				}
				l.AddBox(ch, color, p)
			default:
				return nil, fmt.Errorf("%w %q at %v", ErrSymbol, ch, p)
			}
		}
	}
	if len(l.Agents) == 0 {
		return nil, ErrNoAgents
	}

	for r, row := range goal {
		for c := 0; c < len(row); c++ {
			p := core.Position{Row: r, Col: c}
			ch := row[c]
			switch {
			case ch == '+' || ch == ' ':
			case isAgent(ch):
				if l.AgentByNumber(int(ch-'0')) == nil {
					return nil, fmt.Errorf("%w: goal for missing agent %c", ErrShape, ch)
				}
				l.AddAgentGoal(int(ch-'0'), p)
			case isBox(ch):
				color, ok := colors[ch]
				if !ok {
					return nil, fmt.Errorf("%w: goal %c has no color", ErrUnknownColor, ch)
				}
				l.AddBoxGoal(ch, color, p)
			default:
				return nil, fmt.Errorf("%w %q in goal at %v", ErrSymbol, ch, p)
			}
		}
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	return l, nil
}

// colorTable maps each agent digit and box letter to its color.
func (s *Spec) colorTable() (map[byte]core.Color, error) {
	names := make([]string, 0, len(s.Colors))
	for name := range s.Colors {
		names = append(names, name)
	}
	sort.Strings(names)

	table := make(map[byte]core.Color)
	for _, name := range names {
		color, ok := core.ParseColor(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownColor, name)
		}
		for _, sym := range s.Colors[name] {
			sym = strings.TrimSpace(sym)
			if len(sym) != 1 || !(isAgent(sym[0]) || isBox(sym[0])) {
				return nil, fmt.Errorf("%w %q in color %s", ErrSymbol, sym, name)
			}
			if prev, dup := table[sym[0]]; dup && prev != color {
				return nil, fmt.Errorf("%w: %s listed as %s and %s", ErrUnknownColor, sym, prev, color)
			}
			table[sym[0]] = color
		}
	}
	return table, nil
}

func splitGrid(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func isAgent(ch byte) bool { return ch >= '0' && ch <= '9' }
func isBox(ch byte) bool   { return ch >= 'A' && ch <= 'Z' }

// FromGrid builds a level from in-memory grids. colors maps color names to
// agent digits and box letters, as in the YAML form.
func FromGrid(colors map[string]string, initial, goal []string) (*core.Level, error) {
	spec := &Spec{
		Colors:  make(map[string][]string, len(colors)),
		Initial: strings.Join(initial, "\n"),
		Goal:    strings.Join(goal, "\n"),
	}
	for name, syms := range colors {
		for i := 0; i < len(syms); i++ {
			spec.Colors[name] = append(spec.Colors[name], string(syms[i]))
		}
	}
	return spec.Build()
}

// MustFromGrid is FromGrid for fixtures; it panics on error.
func MustFromGrid(colors map[string]string, initial, goal []string) *core.Level {
	l, err := FromGrid(colors, initial, goal)
	if err != nil {
		panic(err)
	}
	return l
}
