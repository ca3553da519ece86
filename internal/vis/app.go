// Package vis implements a Gio-based visualization of box-pushing plans.
package vis

import (
	"context"
	"image/color"
	"log/slog"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/interact"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/observer"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/state"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis/widgets"
)

// App is the main visualization application.
type App struct {
	state     *state.State
	problem   *algo.Problem
	opts      algo.Options
	logger    *slog.Logger
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	tree      *widgets.CBSTree
	camera    *interact.Camera

	window  *app.Window
	cancel  context.CancelFunc
	results chan *algo.Result
}

// NewApp creates the visualizer for l. opts configure the solver runs the
// toolbar starts; opts.Algorithm is the initial selection.
func NewApp(l *core.Level, opts algo.Options) *App {
	st := state.NewState(l)
	p := algo.NewProblem(l)
	camera := interact.NewCamera()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		state:     st,
		problem:   p,
		opts:      opts,
		logger:    logger,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera, p.Assignment.Unowned(l)),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st, algo.Algorithms, opts.Algorithm),
		tree:      widgets.NewCBSTree(st),
		camera:    camera,
		results:   make(chan *algo.Result, 1),
	}
	a.toolbar.OnRun = a.startSolve
	a.toolbar.OnCancel = a.cancelSolve
	return a
}

// startSolve runs the named solver in the background. The result arrives on
// a.results and is installed by the frame loop.
func (a *App) startSolve(name string) {
	if a.cancel != nil {
		return
	}
	opts := a.opts
	opts.Algorithm = name
	opts.Observer = observer.NewAlgoStateObserver(a.state.Algo)
	solver, err := algo.New(opts)
	if err != nil {
		a.logger.Error("building solver", "algorithm", name, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.state.Algo.Start()
	a.tree.Reset()
	a.state.Playback.Pause()

	go func() {
		res := solver.Solve(ctx, a.problem)
		a.results <- res
		if a.window != nil {
			a.window.Invalidate()
		}
	}()
}

func (a *App) cancelSolve() {
	if a.cancel != nil {
		a.cancel()
	}
}

// collect installs a finished result, if one is waiting.
func (a *App) collect() {
	select {
	case res := <-a.results:
		a.cancel()
		a.cancel = nil
		a.state.Algo.Stop()
		a.state.SetResult(res)
		a.logger.Info("solver finished",
			"run", res.RunID.String(), "solver", res.Solver, "solved", res.Solved,
			"reason", string(res.Reason), "cost", res.Cost, "nodes", res.Stats.Nodes,
			"elapsed", res.Elapsed)
		if a.state.ReplayErr != nil {
			a.logger.Error("replaying plan", "err", a.state.ReplayErr)
		}
		if res.Solved {
			a.state.Playback.Play()
		}
	default:
	}
}

// Run starts the application event loop. It solves once with the initial
// algorithm before the first frame.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	a.window = w
	a.startSolve(a.toolbar.Algorithm())

	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			a.cancelSolve()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.collect()

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.state.Playback.Advance()
			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing || a.state.Algo.IsActive() {
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	pb := a.state.Playback
	switch e.Name {
	case key.NameSpace:
		pb.TogglePlay()
	case key.NameLeftArrow:
		pb.StepBack()
	case key.NameRightArrow:
		pb.StepForward()
	case key.NameHome:
		pb.Reset()
	case key.NameEnd:
		pb.Pause()
		pb.SetTime(pb.MaxTime)
	case "R":
		a.camera.Reset()
	case "A":
		if !a.state.Algo.IsActive() {
			a.toolbar.CycleAlgorithm()
		}
	case key.NameReturn:
		a.startSolve(a.toolbar.Algorithm())
	case key.NameEscape:
		a.cancelSolve()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, a.workspace.Layout),
				// The tree is only populated by CBS runs.
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if len(a.state.Algo.GetNodes()) == 0 {
						return layout.Dimensions{}
					}
					return a.tree.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
