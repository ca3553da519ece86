// Package render draws level snapshots as colored terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
)

// Cell glyphs. Box goals not yet covered show as the lower-case letter.
const (
	wallGlyph      = '+'
	freeGlyph      = ' '
	agentGoalGlyph = '.'
)

var palette = map[core.Color]lipgloss.Color{
	core.Blue:      lipgloss.Color("#3B82F6"),
	core.Red:       lipgloss.Color("#EF4444"),
	core.Cyan:      lipgloss.Color("#06B6D4"),
	core.Purple:    lipgloss.Color("#7C3AED"),
	core.Green:     lipgloss.Color("#10B981"),
	core.Orange:    lipgloss.Color("#F97316"),
	core.Pink:      lipgloss.Color("#EC4899"),
	core.Grey:      lipgloss.Color("#9CA3AF"),
	core.Lightblue: lipgloss.Color("#93C5FD"),
	core.Brown:     lipgloss.Color("#92400E"),
}

// Renderer formats snapshots of one level.
type Renderer struct {
	level *core.Level
	r     *lipgloss.Renderer

	wall   lipgloss.Style
	goal   lipgloss.Style
	header lipgloss.Style
	colors map[core.Color]lipgloss.Style
}

// New creates a renderer for l whose color profile matches w. A writer that
// is not a terminal gets plain text.
func New(l *core.Level, w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	rd := &Renderer{
		level:  l,
		r:      r,
		wall:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		goal:   r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
		colors: make(map[core.Color]lipgloss.Style, len(palette)),
	}
	for c, fg := range palette {
		rd.colors[c] = r.NewStyle().Foreground(fg).Bold(true)
	}
	return rd
}

// Frame renders one snapshot, one line per grid row.
func (rd *Renderer) Frame(s *core.Snapshot) string {
	l := rd.level
	goals := make(map[core.Position]byte, len(l.BoxGoals)+len(l.AgentGoals))
	for _, g := range l.BoxGoals {
		goals[g.Pos] = g.Letter + ('a' - 'A')
	}
	for _, p := range l.AgentGoals {
		if _, ok := goals[p]; !ok {
			goals[p] = agentGoalGlyph
		}
	}

	var sb strings.Builder
	for row := 0; row < l.Rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < l.Cols; col++ {
			p := core.Position{Row: row, Col: col}
			switch {
			case l.IsWall(p):
				sb.WriteString(rd.wall.Render(string(wallGlyph)))
			case rd.agentCell(s, p, &sb):
			case rd.boxCell(s, p, &sb):
			default:
				if g, ok := goals[p]; ok {
					sb.WriteString(rd.goal.Render(string(g)))
				} else {
					sb.WriteByte(freeGlyph)
				}
			}
		}
	}
	return sb.String()
}

func (rd *Renderer) agentCell(s *core.Snapshot, p core.Position, sb *strings.Builder) bool {
	i, ok := s.AgentAt(p)
	if !ok {
		return false
	}
	a := rd.level.Agents[i]
	sb.WriteString(rd.style(a.Color).Render(fmt.Sprint(a.Number)))
	return true
}

func (rd *Renderer) boxCell(s *core.Snapshot, p core.Position, sb *strings.Builder) bool {
	b, ok := s.BoxAt(p)
	if !ok {
		return false
	}
	sb.WriteString(rd.style(b.Color).Render(string(b.Letter)))
	return true
}

func (rd *Renderer) style(c core.Color) lipgloss.Style {
	if st, ok := rd.colors[c]; ok {
		return st
	}
	return rd.r.NewStyle()
}

// Step renders the frame reached after joint step t of p, headed by the
// joint action that produced it. Frame 0 is headed by the level name.
func (rd *Renderer) Step(frames []*core.Snapshot, p *core.Plan, t int) string {
	title := rd.level.Name
	if t > 0 {
		title = fmt.Sprintf("step %d/%d  %s", t, p.Len(), p.Lines()[t-1])
	}
	return rd.header.Render(title) + "\n" + rd.Frame(frames[t])
}

// Playback writes every frame of a replayed plan to w, separated by blank
// lines.
func (rd *Renderer) Playback(w io.Writer, frames []*core.Snapshot, p *core.Plan) error {
	for t := range frames {
		if _, err := fmt.Fprintf(w, "%s\n\n", rd.Step(frames, p, t)); err != nil {
			return err
		}
	}
	return nil
}
