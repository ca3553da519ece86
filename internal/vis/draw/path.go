package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// DrawPath draws a polyline through cell centers.
func DrawPath(gtx layout.Context, path []state.Point, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}

	w := width * camera.Zoom
	for i := 0; i < len(path)-1; i++ {
		x1, y1 := camera.WorldToScreen(CellCenter(path[i]))
		x2, y2 := camera.WorldToScreen(CellCenter(path[i+1]))
		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawPathTrail draws a fading trail behind an agent.
func DrawPathTrail(gtx layout.Context, history []state.Point, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	if len(history) < 2 {
		return
	}

	n := len(history)
	for i := 0; i < n-1; i++ {
		col := baseColor
		col.A = uint8(50 + float64(i)/float64(n)*150)
		w := maxWidth * camera.Zoom * (0.3 + 0.7*float32(i)/float32(n))

		x1, y1 := camera.WorldToScreen(CellCenter(history[i]))
		x2, y2 := camera.WorldToScreen(CellCenter(history[i+1]))
		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawFuturePath draws the remaining path from the agent's current
// position in a dimmer color.
func DrawFuturePath(gtx layout.Context, from state.Point, future []state.Point, camera *interact.Camera, col color.NRGBA) {
	if len(future) == 0 {
		return
	}
	dim := col
	dim.A = 80
	DrawPath(gtx, append([]state.Point{from}, future...), camera, dim, 1.5)
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
