package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

var palette = map[core.Color]color.NRGBA{
	core.Blue:      {R: 59, G: 130, B: 246, A: 255},
	core.Red:       {R: 239, G: 68, B: 68, A: 255},
	core.Cyan:      {R: 6, G: 182, B: 212, A: 255},
	core.Purple:    {R: 124, G: 58, B: 237, A: 255},
	core.Green:     {R: 16, G: 185, B: 129, A: 255},
	core.Orange:    {R: 249, G: 115, B: 22, A: 255},
	core.Pink:      {R: 236, G: 72, B: 153, A: 255},
	core.Grey:      {R: 156, G: 163, B: 175, A: 255},
	core.Lightblue: {R: 147, G: 197, B: 253, A: 255},
	core.Brown:     {R: 146, G: 64, B: 14, A: 255},
}

// ColorSelected highlights the selected agent.
var ColorSelected = color.NRGBA{R: 255, G: 255, B: 100, A: 255}

// AgentColor returns the display color for an agent or box color.
func AgentColor(c core.Color) color.NRGBA {
	if col, ok := palette[c]; ok {
		return col
	}
	return palette[core.Grey]
}

// DrawAgent draws an agent as a filled circle.
func DrawAgent(gtx layout.Context, pos state.Point, a *core.Agent, camera *interact.Camera, selected bool) {
	x, y := camera.WorldToScreen(CellCenter(pos))
	r := CellSize * 0.34 * camera.Zoom
	if selected {
		DrawCircleOutline(gtx, x, y, r+3*camera.Zoom, ColorSelected, 2*camera.Zoom)
	}
	drawFilledCircle(gtx, x, y, r, AgentColor(a.Color))
}

// DrawBox draws a box as a filled square. Boxes no agent can move are
// dimmed.
func DrawBox(gtx layout.Context, pos state.Point, b *core.Box, camera *interact.Camera, static bool) {
	x, y := camera.WorldToScreen(CellCenter(pos))
	half := CellSize * 0.32 * camera.Zoom
	col := AgentColor(b.Color)
	if static {
		col.A = 110
	}
	fillRect(gtx, x-half, y-half, x+half, y+half, col)
}

// DrawActors draws boxes below agents at their interpolated positions.
func DrawActors(gtx layout.Context, st *state.State, camera *interact.Camera, static map[int]bool, selected int) {
	boxes := st.BoxPositions()
	for _, b := range st.Level.Boxes {
		DrawBox(gtx, boxes[b.ID], b, camera, static[b.ID])
	}
	for i, pos := range st.AgentPositions() {
		DrawAgent(gtx, pos, st.Level.Agents[i], camera, i == selected)
	}
}
