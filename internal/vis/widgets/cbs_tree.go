package widgets

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// CBSTree visualizes the CBS constraint tree.
type CBSTree struct {
	state        *state.State
	selectedNode int
	scrollY      float32
}

// NewCBSTree creates a new CBS tree widget.
func NewCBSTree(st *state.State) *CBSTree {
	return &CBSTree{
		state:        st,
		selectedNode: -1,
	}
}

// Reset clears the selection and scroll for a new run.
func (t *CBSTree) Reset() {
	t.selectedNode = -1
	t.scrollY = 0
}

// Colors for tree nodes
var (
	ColorNodeOpen     = color.NRGBA{R: 100, G: 150, B: 200, A: 255}
	ColorNodeClosed   = color.NRGBA{R: 80, G: 100, B: 130, A: 255}
	ColorNodeCurrent  = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
	ColorNodeSolution = color.NRGBA{R: 80, G: 200, B: 120, A: 255}
	ColorNodeSelected = color.NRGBA{R: 255, G: 255, B: 150, A: 255}
	ColorTreeEdge     = color.NRGBA{R: 70, G: 80, B: 90, A: 255}
)

const (
	treeWidth       = 300
	treeTop         = 40
	treeLevelHeight = 50
	treeMarginX     = 30
	treeNodeRadius  = 10
)

// Layout renders the CBS tree.
func (t *CBSTree) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Constraints.Max.Y

	rect := image.Rect(0, 0, treeWidth, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	nodes := t.state.Algo.GetNodes()
	positions := treeLayout(nodes, treeWidth)
	t.handlePointerEvents(gtx, height, positions)

	layout.Inset{Left: unit.Dp(10), Top: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		label := material.Label(th, 14, "CBS Constraint Tree")
		label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
		return label.Layout(gtx)
	})

	t.drawTree(gtx, nodes, positions, height)
	t.drawStats(gtx, th)

	return layout.Dimensions{Size: image.Point{X: treeWidth, Y: height}}
}

func (t *CBSTree) drawTree(gtx layout.Context, nodes []state.CBSNodeInfo, positions map[int]nodePos, height int) {
	offsetY := -t.scrollY

	for _, node := range nodes {
		parent, ok := positions[node.ParentID]
		if !ok {
			continue
		}
		child := positions[node.ID]
		t.drawTreeEdge(gtx,
			float32(parent.X), float32(parent.Y)+offsetY,
			float32(child.X), float32(child.Y)+offsetY)
	}

	current := t.state.Algo.GetCurrentNode()
	for i := range nodes {
		node := &nodes[i]
		pos := positions[node.ID]
		y := float32(pos.Y) + offsetY
		if y < treeTop-treeNodeRadius || y > float32(height) {
			continue
		}
		t.drawTreeNode(gtx, float32(pos.X), y, t.nodeColor(node, current))
	}
}

type nodePos struct {
	X, Y int
}

// treeLayout places nodes by depth, spreading each level evenly across
// width in arrival order.
func treeLayout(nodes []state.CBSNodeInfo, width int) map[int]nodePos {
	depth := make(map[int]int, len(nodes))
	var levels [][]int
	for _, node := range nodes {
		d := 0
		if pd, ok := depth[node.ParentID]; ok {
			d = pd + 1
		}
		depth[node.ID] = d
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], node.ID)
	}

	positions := make(map[int]nodePos, len(nodes))
	avail := width - 2*treeMarginX
	for d, ids := range levels {
		n := len(ids)
		for i, id := range ids {
			positions[id] = nodePos{
				X: treeMarginX + avail*(2*i+1)/(2*n),
				Y: treeTop + treeNodeRadius + d*treeLevelHeight,
			}
		}
	}
	return positions
}

func (t *CBSTree) nodeColor(node *state.CBSNodeInfo, current int) color.NRGBA {
	switch {
	case node.ID == t.selectedNode:
		return ColorNodeSelected
	case node.IsSolution:
		return ColorNodeSolution
	case node.ID == current:
		return ColorNodeCurrent
	case !node.Expanded:
		return ColorNodeOpen
	default:
		return ColorNodeClosed
	}
}

func (t *CBSTree) drawTreeNode(gtx layout.Context, x, y float32, col color.NRGBA) {
	radius := float32(treeNodeRadius)

	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(x+radius, y))

	segments := 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		px := x + radius*float32(math.Cos(angle))
		py := y + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(px-path.Pos().X, py-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func (t *CBSTree) drawTreeEdge(gtx layout.Context, x1, y1, x2, y2 float32) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 1 {
		return
	}

	dx /= length
	dy /= length
	width := float32(2)
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, ColorTreeEdge, clip.Outline{Path: path.End()}.Op())
}

func (t *CBSTree) drawStats(gtx layout.Context, th *material.Theme) {
	expanded, conflicts, pruned, open := t.state.Algo.Counters()
	lines := []string{
		fmt.Sprintf("Nodes expanded: %d", expanded),
		fmt.Sprintf("Conflicts found: %d", conflicts),
		fmt.Sprintf("Branches pruned: %d", pruned),
		fmt.Sprintf("Open set: %d", open),
	}
	if node := t.Selected(); node != nil {
		lines = append(lines, nodeDetail(node)...)
	}

	layout.Inset{Left: unit.Dp(10), Bottom: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			children := make([]layout.FlexChild, len(lines))
			for i, line := range lines {
				children[i] = layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 11, line)
					label.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
					return label.Layout(gtx)
				})
			}
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
		})
	})
}

func nodeDetail(node *state.CBSNodeInfo) []string {
	lines := []string{fmt.Sprintf("Node %d: cost %d, makespan %d, %d constraints",
		node.ID, node.Cost, node.Makespan, node.Constraints)}
	if node.Added != nil {
		lines = append(lines, "Added: "+node.Added.String())
	}
	if node.Conflict != nil {
		lines = append(lines, "Branched on: "+node.Conflict.String())
	}
	return lines
}

// Selected returns the node picked in the tree, if any.
func (t *CBSTree) Selected() *state.CBSNodeInfo {
	if t.selectedNode < 0 {
		return nil
	}
	for _, node := range t.state.Algo.GetNodes() {
		if node.ID == t.selectedNode {
			return &node
		}
	}
	return nil
}

func (t *CBSTree) handlePointerEvents(gtx layout.Context, height int, positions map[int]nodePos) {
	area := clip.Rect(image.Rect(0, 0, treeWidth, height)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  t,
			Kinds:   pointer.Scroll | pointer.Press,
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Scroll:
			t.scrollY = max(0, t.scrollY+pe.Scroll.Y)
		case pointer.Press:
			t.selectedNode = hitNode(positions, pe.Position.X, pe.Position.Y+t.scrollY)
		}
	}
}

// hitNode returns the node within its radius of (x, y), or -1.
func hitNode(positions map[int]nodePos, x, y float32) int {
	for id, p := range positions {
		dx := x - float32(p.X)
		dy := y - float32(p.Y)
		if dx*dx+dy*dy <= treeNodeRadius*treeNodeRadius {
			return id
		}
	}
	return -1
}
