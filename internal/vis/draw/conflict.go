package draw

import (
	"image/color"
	"math"
	"time"

	"gioui.org/layout"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
)

// Conflict colors
var (
	ColorConflictPosition = color.NRGBA{R: 255, G: 80, B: 80, A: 200}
	ColorConflictFollow   = color.NRGBA{R: 255, G: 150, B: 80, A: 200}
	ColorConstraint       = color.NRGBA{R: 200, G: 100, B: 100, A: 150}
)

// DrawConflict draws the conflict the solver is branching on as expanding
// rings over its cell.
func DrawConflict(gtx layout.Context, conflict *algo.Conflict, camera *interact.Camera) {
	if conflict == nil {
		return
	}

	x, y := camera.WorldToScreen(CellCenter(pointOf(conflict.Pos)))
	base := ColorConflictPosition
	if conflict.Kind == algo.FollowConflict {
		base = ColorConflictFollow
	}

	t := float64(time.Now().UnixMilli()) / 1000.0
	for i := 0; i < 3; i++ {
		ripple := float32(math.Mod(t+float64(i)*0.3, 1.0))
		col := base
		col.A = uint8((1 - ripple) * 200)
		radius := (CellSize*0.3 + CellSize*0.6*ripple) * camera.Zoom
		DrawCircleOutline(gtx, x, y, radius, col, 2*camera.Zoom)
	}
	drawFilledCircle(gtx, x, y, 5*camera.Zoom, base)
}

// DrawConstraint marks a forbidden cell with a struck-through circle.
func DrawConstraint(gtx layout.Context, c search.Constraint, camera *interact.Camera) {
	x, y := camera.WorldToScreen(CellCenter(pointOf(c.Pos)))
	radius := CellSize * 0.36 * camera.Zoom
	DrawCircleOutline(gtx, x, y, radius, ColorConstraint, 2*camera.Zoom)

	diag := radius * 0.7
	drawPathSegment(gtx, x-diag, y-diag, x+diag, y+diag, 2*camera.Zoom, ColorConstraint)
}
