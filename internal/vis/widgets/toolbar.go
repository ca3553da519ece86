package widgets

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
)

// Toolbar provides playback and solver controls.
type Toolbar struct {
	state *state.State

	// Algorithms is the cycle order of the algorithm button.
	Algorithms []string
	algo       int

	// OnRun starts a solve with the named algorithm; OnCancel stops it.
	OnRun    func(algorithm string)
	OnCancel func()

	// Buttons
	playBtn      widget.Clickable
	pauseBtn     widget.Clickable
	resetBtn     widget.Clickable
	stepFwdBtn   widget.Clickable
	stepBackBtn  widget.Clickable
	speedUpBtn   widget.Clickable
	speedDownBtn widget.Clickable

	// Algorithm controls
	runAlgoBtn   widget.Clickable
	cycleAlgoBtn widget.Clickable
}

// NewToolbar creates a new toolbar with initial selected.
func NewToolbar(st *state.State, algorithms []string, initial string) *Toolbar {
	t := &Toolbar{state: st, Algorithms: algorithms}
	for i, name := range algorithms {
		if name == initial {
			t.algo = i
		}
	}
	return t
}

// Algorithm returns the selected algorithm name.
func (t *Toolbar) Algorithm() string {
	if len(t.Algorithms) == 0 {
		return ""
	}
	return t.Algorithms[t.algo]
}

// CycleAlgorithm selects the next algorithm.
func (t *Toolbar) CycleAlgorithm() {
	if len(t.Algorithms) > 0 {
		t.algo = (t.algo + 1) % len(t.Algorithms)
	}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 48

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	t.handleClicks(gtx)

	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle, Spacing: layout.SpaceStart}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutPlaybackControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutSpeedControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutStatus(gtx, th)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutAlgoControls(gtx, th)
			}),
		)
	})
}

func (t *Toolbar) layoutPlaybackControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceStart}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.stepBackBtn, "|<", false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if t.state.Playback.Playing {
				return t.button(gtx, th, &t.pauseBtn, "||", true)
			}
			return t.button(gtx, th, &t.playBtn, ">", false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.stepFwdBtn, ">|", false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.resetBtn, "[]", false)
		}),
	)
}

func (t *Toolbar) layoutSpeedControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceStart}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.speedDownBtn, "-", false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.speedUpBtn, "+", false)
		}),
	)
}

// layoutStatus shows the outcome of the last solve.
func (t *Toolbar) layoutStatus(gtx layout.Context, th *material.Theme) layout.Dimensions {
	label := material.Label(th, 12, t.status())
	label.Color = color.NRGBA{R: 170, G: 175, B: 185, A: 255}
	return label.Layout(gtx)
}

func (t *Toolbar) status() string {
	switch res := t.state.Result; {
	case t.state.Algo.IsActive():
		return "solving..."
	case res == nil:
		return "no plan"
	case !res.Solved:
		return fmt.Sprintf("%s: %s", res.Solver, res.Reason)
	case t.state.ReplayErr != nil:
		return fmt.Sprintf("%s: replay failed: %v", res.Solver, t.state.ReplayErr)
	default:
		return fmt.Sprintf("%s: %d steps, cost %d, %s", res.Solver, res.Plan.Len(), res.Cost, res.Elapsed.Round(time.Millisecond))
	}
}

func (t *Toolbar) layoutAlgoControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceStart}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.cycleAlgoBtn, t.Algorithm(), false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			label := "Run"
			if t.state.Algo.IsActive() {
				label = "Stop"
			}
			return t.button(gtx, th, &t.runAlgoBtn, label, t.state.Algo.IsActive())
		}),
	)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) button(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string, active bool) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if active {
		bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
	}
	if btn.Hovered() {
		bg.R = min(bg.R, 240) + 15
		bg.G = min(bg.G, 240) + 15
		bg.B = min(bg.B, 240) + 15
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: 32, Y: 28}
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 12, text)
					label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
					return label.Layout(gtx)
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	pb := t.state.Playback
	for t.playBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.pauseBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.resetBtn.Clicked(gtx) {
		pb.Reset()
	}
	for t.stepFwdBtn.Clicked(gtx) {
		pb.StepForward()
	}
	for t.stepBackBtn.Clicked(gtx) {
		pb.StepBack()
	}

	for t.speedUpBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed * 1.5)
	}
	for t.speedDownBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed / 1.5)
	}

	for t.cycleAlgoBtn.Clicked(gtx) {
		if !t.state.Algo.IsActive() {
			t.CycleAlgorithm()
		}
	}
	for t.runAlgoBtn.Clicked(gtx) {
		if t.state.Algo.IsActive() {
			if t.OnCancel != nil {
				t.OnCancel()
			}
		} else if t.OnRun != nil {
			t.OnRun(t.Algorithm())
		}
	}
}
