// Package core defines domain models for multi-agent box planning.
package core

import "fmt"

// Position is a grid cell (row, column).
type Position struct {
	Row, Col int
}

// Add returns p displaced by d.
func (p Position) Add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// Sub returns p displaced by -d.
func (p Position) Sub(d Position) Position {
	return Position{Row: p.Row - d.Row, Col: p.Col - d.Col}
}

// Less orders positions row-major.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is one of the four compass directions.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists the compass directions in catalog order.
var Directions = [...]Direction{North, South, East, West}

func (d Direction) String() string {
	return [...]string{"N", "S", "E", "W"}[d]
}

// Delta returns the unit displacement of d.
func (d Direction) Delta() Position {
	switch d {
	case North:
		return Position{Row: -1}
	case South:
		return Position{Row: 1}
	case East:
		return Position{Col: 1}
	default:
		return Position{Col: -1}
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return [...]Direction{South, North, West, East}[d]
}

// Color is the closed set of agent and box colors.
type Color int

const (
	Blue Color = iota
	Red
	Cyan
	Purple
	Green
	Orange
	Pink
	Grey
	Lightblue
	Brown
)

var colorNames = [...]string{"blue", "red", "cyan", "purple", "green", "orange", "pink", "grey", "lightblue", "brown"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return "unknown"
	}
	return colorNames[c]
}

// ParseColor resolves a lower-case color name.
func ParseColor(s string) (Color, bool) {
	for i, name := range colorNames {
		if name == s {
			return Color(i), true
		}
	}
	return 0, false
}

// Agent is a controllable actor. Its position lives in search states, not here.
type Agent struct {
	Number int
	Color  Color
}

func (a *Agent) String() string {
	return fmt.Sprintf("agent %d (%s)", a.Number, a.Color)
}

// Box is one physical box. ID is its load order and distinguishes boxes
// sharing a letter.
type Box struct {
	ID     int
	Letter byte
	Color  Color
}

func (b *Box) String() string {
	return fmt.Sprintf("box %c#%d (%s)", b.Letter, b.ID, b.Color)
}

// BoxGoal requires a box with Letter at Pos.
type BoxGoal struct {
	Letter byte
	Color  Color
	Pos    Position
}
