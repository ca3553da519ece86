// Package draw provides rendering functions for visualization.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// CellSize is the side of one grid cell in world units.
const CellSize = 32

// Level colors
var (
	ColorFloor     = color.NRGBA{R: 42, G: 46, B: 54, A: 255}
	ColorWall      = color.NRGBA{R: 90, G: 96, B: 108, A: 255}
	ColorGridLine  = color.NRGBA{R: 34, G: 37, B: 44, A: 255}
	ColorAgentGoal = color.NRGBA{R: 220, G: 220, B: 220, A: 140}
)

// CellCenter returns the world coordinates of the center of a fractional
// grid position.
func CellCenter(p state.Point) (x, y float64) {
	return (p.Col + 0.5) * CellSize, (p.Row + 0.5) * CellSize
}

// LevelBounds returns the world rectangle covered by l.
func LevelBounds(l *core.Level) (minX, minY, maxX, maxY float64) {
	return 0, 0, float64(l.Cols * CellSize), float64(l.Rows * CellSize)
}

// DrawLevel renders floor, walls and goal markers.
func DrawLevel(gtx layout.Context, l *core.Level, camera *interact.Camera) {
	for r := 0; r < l.Rows; r++ {
		for c := 0; c < l.Cols; c++ {
			col := ColorFloor
			if l.IsWall(core.Position{Row: r, Col: c}) {
				col = ColorWall
			}
			drawCell(gtx, r, c, camera, col)
		}
	}

	for _, g := range l.BoxGoals {
		x, y := camera.WorldToScreen(CellCenter(pointOf(g.Pos)))
		half := CellSize * 0.38 * camera.Zoom
		drawSquareOutline(gtx, x, y, 2*half, AgentColor(g.Color), 2*camera.Zoom)
	}
	for _, pos := range l.AgentGoals {
		x, y := camera.WorldToScreen(CellCenter(pointOf(pos)))
		DrawCircleOutline(gtx, x, y, CellSize*0.4*camera.Zoom, ColorAgentGoal, 2*camera.Zoom)
	}
}

func pointOf(p core.Position) state.Point {
	return state.Point{Row: float64(p.Row), Col: float64(p.Col)}
}

// drawCell fills one cell leaving a one pixel grid line.
func drawCell(gtx layout.Context, row, col int, camera *interact.Camera, fill color.NRGBA) {
	x0, y0 := camera.WorldToScreen(float64(col*CellSize), float64(row*CellSize))
	x1, y1 := camera.WorldToScreen(float64((col+1)*CellSize), float64((row+1)*CellSize))
	fillRect(gtx, x0, y0, x1, y1, ColorGridLine)
	fillRect(gtx, x0+1, y0+1, x1, y1, fill)
}

func fillRect(gtx layout.Context, x0, y0, x1, y1 float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x0, y0))
	path.LineTo(f32.Pt(x1, y0))
	path.LineTo(f32.Pt(x1, y1))
	path.LineTo(f32.Pt(x0, y1))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawSquareOutline(gtx layout.Context, cx, cy, size float32, col color.NRGBA, strokeWidth float32) {
	half := size / 2
	inner := max(half-strokeWidth, 0)

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx-half, cy-half))
	path.LineTo(f32.Pt(cx+half, cy-half))
	path.LineTo(f32.Pt(cx+half, cy+half))
	path.LineTo(f32.Pt(cx-half, cy+half))
	path.Close()
	// Hole, wound the other way.
	path.MoveTo(f32.Pt(cx-inner, cy-inner))
	path.LineTo(f32.Pt(cx-inner, cy+inner))
	path.LineTo(f32.Pt(cx+inner, cy+inner))
	path.LineTo(f32.Pt(cx+inner, cy-inner))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawCircleOutline draws a circle outline.
func DrawCircleOutline(gtx layout.Context, centerX, centerY float32, radius float32, col color.NRGBA, strokeWidth float32) {
	var outerPath clip.Path
	outerPath.Begin(gtx.Ops)
	outerPath.Move(f32.Pt(centerX+radius, centerY))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + radius*float32(math.Cos(angle))
		y := centerY + radius*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	// Inner circle (hole)
	innerR := max(radius-strokeWidth, 0)
	outerPath.Move(f32.Pt(centerX+innerR-outerPath.Pos().X, centerY-outerPath.Pos().Y))
	for i := 1; i <= segments; i++ {
		angle := -float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + innerR*float32(math.Cos(angle))
		y := centerY + innerR*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: outerPath.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// CellAt returns the grid cell under a screen point.
func CellAt(screenX, screenY float32, l *core.Level, camera *interact.Camera) (core.Position, bool) {
	wx, wy := camera.ScreenToWorld(screenX, screenY)
	p := core.Position{Row: int(math.Floor(wy / CellSize)), Col: int(math.Floor(wx / CellSize))}
	return p, l.InBounds(p)
}
