// Command run_benchmarks runs every solver on a directory of levels and
// collects per-run metrics into a CSV file.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/config"
	"github.com/elektrokombinacija/mapf-hospital/internal/core"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
)

// BenchmarkResult stores results from a single solver run.
type BenchmarkResult struct {
	Timestamp  string
	CommitHash string
	GoVersion  string
	OS         string
	Arch       string
	Level      string
	NumAgents  int
	NumBoxes   int
	GridSize   string
	Solver     string
	RuntimeMs  float64
	Success    bool
	Reason     string
	Makespan   int
	Cost       int
	Verified   bool
	Nodes      int
	Conflicts  int
	Expanded   int
}

// SolverMetrics holds per-solver aggregated metrics.
type SolverMetrics struct {
	Name           string
	TotalRuns      int
	Successes      int
	TotalRuntimeMs float64
	TotalMakespan  int
}

type benchOptions struct {
	input      string
	output     string
	configPath string
	solvers    []string
	timeout    time.Duration
	workers    int
	verbose    bool
}

func getGitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

type job struct {
	path   string
	level  *core.Level
	solver string
}

// runSolver solves one level with one solver under timeout and replays the
// plan to verify it.
func runSolver(ctx context.Context, j job, cfg *config.Config, timeout time.Duration, env BenchmarkResult) (*BenchmarkResult, error) {
	solver, err := algo.New(algo.Options{
		Algorithm: j.solver,
		Strategy:  cfg.Strategy(),
		MaxTime:   cfg.Planner.MaxTime,
		MaxNodes:  cfg.Planner.MaxNodes,
		Parallel:  cfg.Planner.Parallel,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := algo.NewProblem(j.level)
	start := time.Now()
	res := solver.Solve(ctx, p)

	r := env
	r.Level = j.level.Name
	r.NumAgents = len(j.level.Agents)
	r.NumBoxes = len(j.level.Boxes)
	r.GridSize = fmt.Sprintf("%dx%d", j.level.Rows, j.level.Cols)
	r.Solver = res.Solver
	r.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	r.Success = res.Solved
	r.Reason = string(res.Reason)
	r.Cost = res.Cost
	r.Nodes = res.Stats.Nodes
	r.Conflicts = res.Stats.Conflicts
	r.Expanded = res.Stats.Expanded
	if res.Solved {
		r.Makespan = res.Plan.Len()
		frames, err := core.Replay(j.level, res.Plan)
		r.Verified = err == nil && frames[len(frames)-1].Satisfied(p.AssignedGoals(), j.level.AgentGoals)
	}
	return &r, nil
}

// runAll solves every job on a bounded worker pool. Results keep job order.
func runAll(ctx context.Context, jobs []job, cfg *config.Config, opts *benchOptions, logger *slog.Logger) ([]*BenchmarkResult, error) {
	env := BenchmarkResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: getGitCommit(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}

	results := make([]*BenchmarkResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.workers))
	for i, j := range jobs {
		g.Go(func() error {
			r, err := runSolver(ctx, j, cfg, opts.timeout, env)
			if err != nil {
				return fmt.Errorf("%s / %s: %w", j.path, j.solver, err)
			}
			results[i] = r
			logger.Debug("run finished", "level", r.Level, "solver", r.Solver,
				"solved", r.Success, "reason", r.Reason, "ms", r.RuntimeMs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeCSV(w io.Writer, results []*BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"level", "num_agents", "num_boxes", "grid_size", "solver",
		"runtime_ms", "success", "reason", "makespan", "cost", "verified",
		"nodes", "conflicts", "expanded",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Level, strconv.Itoa(r.NumAgents), strconv.Itoa(r.NumBoxes), r.GridSize, r.Solver,
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.FormatBool(r.Success), r.Reason,
			strconv.Itoa(r.Makespan), strconv.Itoa(r.Cost), strconv.FormatBool(r.Verified),
			strconv.Itoa(r.Nodes), strconv.Itoa(r.Conflicts), strconv.Itoa(r.Expanded),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func printSummary(w io.Writer, results []*BenchmarkResult) {
	metrics := make(map[string]*SolverMetrics)
	for _, r := range results {
		m, ok := metrics[r.Solver]
		if !ok {
			m = &SolverMetrics{Name: r.Solver}
			metrics[r.Solver] = m
		}
		m.TotalRuns++
		if r.Success {
			m.Successes++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalMakespan += r.Makespan
		}
	}

	fmt.Fprintln(w, "\n=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%-12s %6s %8s %12s %12s\n", "Solver", "Runs", "Success", "Avg Time(ms)", "AvgMakespan")
	fmt.Fprintln(w, strings.Repeat("-", 54))

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime, avgMakespan := 0.0, 0.0
		if m.Successes > 0 {
			avgTime = m.TotalRuntimeMs / float64(m.Successes)
			avgMakespan = float64(m.TotalMakespan) / float64(m.Successes)
		}
		fmt.Fprintf(w, "%-12s %6d %8d %12.2f %12.2f\n", m.Name, m.TotalRuns, m.Successes, avgTime, avgMakespan)
	}
}

func loadJobs(dir string, solvers []string) ([]job, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no level files in %s", dir)
	}
	sort.Strings(files)

	var jobs []job
	for _, path := range files {
		l, err := level.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, s := range solvers {
			jobs = append(jobs, job{path: path, level: l, solver: s})
		}
	}
	return jobs, nil
}

func run(cmd *cobra.Command, opts *benchOptions) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	lvl := slog.LevelInfo
	if opts.verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	jobs, err := loadJobs(opts.input, opts.solvers)
	if err != nil {
		return err
	}
	logger.Info("running benchmarks", "runs", len(jobs), "timeout", opts.timeout, "workers", opts.workers)

	results, err := runAll(cmd.Context(), jobs, cfg, opts, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return err
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := writeCSV(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("results written", "path", opts.output)

	printSummary(cmd.OutOrStdout(), results)
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:          "run_benchmarks",
		Short:        "Benchmark every solver on a directory of levels",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "input", "levels", "directory containing level YAML files")
	f.StringVar(&opts.output, "output", "evidence/benchmark_results.csv", "output CSV file")
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML planner configuration")
	f.StringSliceVar(&opts.solvers, "solver", algo.Algorithms, "solvers to run")
	f.DurationVar(&opts.timeout, "timeout", time.Minute, "timeout per solver run")
	f.IntVar(&opts.workers, "workers", runtime.NumCPU(), "concurrent runs")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every run")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
