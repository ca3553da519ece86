package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/config"
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
	"github.com/elektrokombinacija/mapf-hospital/internal/metrics"
	"github.com/elektrokombinacija/mapf-hospital/internal/render"
)

type solveOptions struct {
	configPath string
	algorithm  string
	frontier   string
	maxTime    int
	maxNodes   int
	parallel   bool
	timeout    time.Duration
	check      bool
	show       bool
	metricsOut string
}

// loadConfig reads the config file, if any, and applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, opts *solveOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("algorithm") {
		cfg.Planner.Algorithm = opts.algorithm
	}
	if f.Changed("frontier") {
		cfg.Planner.Frontier = opts.frontier
	}
	if f.Changed("max-time") {
		cfg.Planner.MaxTime = opts.maxTime
	}
	if f.Changed("max-nodes") {
		cfg.Planner.MaxNodes = opts.maxNodes
	}
	if f.Changed("parallel") {
		cfg.Planner.Parallel = opts.parallel
	}
	if f.Changed("metrics-out") {
		cfg.Metrics.Output = opts.metricsOut
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	lvl, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	ho := &slog.HandlerOptions{Level: lvl}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	}
	return slog.New(slog.NewTextHandler(w, ho)), nil
}

func runSolve(cmd *cobra.Command, levelPath string, opts *solveOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	l, err := level.Load(levelPath)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	solver, err := algo.New(algo.Options{
		Algorithm: cfg.Planner.Algorithm,
		Strategy:  cfg.Strategy(),
		MaxTime:   cfg.Planner.MaxTime,
		MaxNodes:  cfg.Planner.MaxNodes,
		Parallel:  cfg.Planner.Parallel,
		Logger:    logger,
		Observer:  rec,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	prob := algo.NewProblem(l)
	for _, g := range prob.Assignment.Unassigned {
		logger.Warn("box goal has no capable agent", "letter", string(g.Letter), "pos", g.Pos.String())
	}
	res := solver.Solve(ctx, prob)
	rec.RecordResult(res)
	if cfg.Metrics.Output != "" {
		if err := writeMetrics(cfg.Metrics.Output, rec); err != nil {
			return err
		}
	}
	logger.Info("solver finished",
		"run", res.RunID.String(), "solver", res.Solver, "solved", res.Solved,
		"reason", string(res.Reason), "nodes", res.Stats.Nodes,
		"expanded", res.Stats.Expanded, "elapsed", res.Elapsed)
	if !res.Solved {
		return fmt.Errorf("no plan for %s: %s", l.Name, res.Reason)
	}

	if opts.check || opts.show {
		frames, err := core.Replay(l, res.Plan)
		if err != nil {
			return fmt.Errorf("plan check: %w", err)
		}
		if opts.check && !frames[len(frames)-1].Satisfied(prob.AssignedGoals(), l.AgentGoals) {
			return errors.New("plan check: final state misses a goal")
		}
		if opts.show {
			if err := render.New(l, cmd.ErrOrStderr()).Playback(cmd.ErrOrStderr(), frames, res.Plan); err != nil {
				return err
			}
		}
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, line := range res.Plan.Lines() {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func writeMetrics(path string, rec *metrics.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	if err := rec.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runValidate(cmd *cobra.Command, levelPath string) error {
	l, err := level.Load(levelPath)
	if err != nil {
		return err
	}
	prob := algo.NewProblem(l)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Level %q: %dx%d, %d agents, %d boxes, %d box goals\n",
		l.Name, l.Rows, l.Cols, len(l.Agents), len(l.Boxes), len(l.BoxGoals))
	for _, t := range prob.Assignment.Tasks {
		fmt.Fprintf(out, "  %v: %d boxes, %d box goals", t.Agent, len(t.Boxes), len(t.BoxGoals))
		if t.HasGoal {
			fmt.Fprintf(out, ", goal %v", t.Goal)
		}
		fmt.Fprintln(out)
	}
	for _, g := range prob.Assignment.Unassigned {
		fmt.Fprintf(out, "  unassigned: %c at %v\n", g.Letter, g.Pos)
	}
	if unowned := prob.Assignment.Unowned(l); len(unowned) > 0 {
		fmt.Fprintf(out, "  %d static boxes\n", len(unowned))
	}
	return nil
}

func runShow(cmd *cobra.Command, levelPath, planPath string) error {
	l, err := level.Load(levelPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rd := render.New(l, out)
	if planPath == "" {
		_, err := fmt.Fprintln(out, rd.Frame(core.InitialSnapshot(l)))
		return err
	}

	lines, err := readLines(planPath)
	if err != nil {
		return err
	}
	plan, err := core.ParsePlan(l.Agents, lines)
	if err != nil {
		return fmt.Errorf("parsing plan %s: %w", planPath, err)
	}
	frames, replayErr := core.Replay(l, plan)
	if err := rd.Playback(out, frames, plan); err != nil {
		return err
	}
	return replayErr
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
