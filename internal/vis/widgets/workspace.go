// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/draw"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// Workspace is the main 2D visualization area.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	static map[int]bool // box ids no agent can move

	// Selected is the agent index whose future path is drawn, or -1.
	Selected int
}

// NewWorkspace creates a new workspace widget. unowned lists the boxes no
// agent is assigned to.
func NewWorkspace(st *state.State, camera *interact.Camera, unowned []*core.Box) *Workspace {
	static := make(map[int]bool, len(unowned))
	for _, b := range unowned {
		static[b.ID] = true
	}
	return &Workspace{
		state:    st,
		camera:   camera,
		static:   static,
		Selected: -1,
	}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	minX, minY, maxX, maxY := draw.LevelBounds(w.state.Level)
	w.camera.FitOnce(minX, minY, maxX, maxY, float32(bounds.X), float32(bounds.Y), 24)

	w.handlePointerEvents(gtx)

	draw.DrawLevel(gtx, w.state.Level, w.camera)

	agents := w.state.AgentPositions()
	for i, a := range w.state.Level.Agents {
		col := draw.AgentColor(a.Color)
		draw.DrawPathTrail(gtx, w.state.PathHistory(i), w.camera, col, 4)
		if i == w.Selected {
			draw.DrawFuturePath(gtx, agents[i], w.state.FuturePath(i), w.camera, col)
		}
	}

	if w.state.Algo.IsActive() {
		draw.DrawConflict(gtx, w.state.Algo.CurrentConflict(), w.camera)
	}

	draw.DrawActors(gtx, w.state, w.camera, w.static, w.Selected)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			w.handleClick(pe.Position.X, pe.Position.Y)
		}
	}
}

// handleClick selects the agent on the clicked cell, or clears the
// selection.
func (w *Workspace) handleClick(screenX, screenY float32) {
	w.Selected = -1
	cell, ok := draw.CellAt(screenX, screenY, w.state.Level, w.camera)
	if !ok {
		return
	}
	for i, p := range w.state.AgentPositions() {
		if int(p.Row+0.5) == cell.Row && int(p.Col+0.5) == cell.Col {
			w.Selected = i
			return
		}
	}
}
