// Command mapfplan plans box pushing and pulling for every agent of a level.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "mapfplan",
		Short:        "Multi-agent box planner (CBS, prioritized, joint search)",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(showCmd())
	return rootCmd
}

func solveCmd() *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve [level.yaml]",
		Short: "Plan a level and print one joint action per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML planner configuration")
	f.StringVarP(&opts.algorithm, "algorithm", "a", "", "solver: cbs, prioritized or joint")
	f.StringVar(&opts.frontier, "frontier", "", "low-level frontier: bfs or bestfirst")
	f.IntVar(&opts.maxTime, "max-time", 0, "trajectory horizon in time steps")
	f.IntVar(&opts.maxNodes, "max-nodes", 0, "CBS node or joint expansion budget")
	f.BoolVar(&opts.parallel, "parallel", true, "replan CBS children concurrently")
	f.DurationVar(&opts.timeout, "timeout", 0, "wall-clock limit, 0 = none")
	f.BoolVar(&opts.check, "check", false, "replay the plan and verify the goal state")
	f.BoolVar(&opts.show, "show", false, "render every step to stderr")
	f.StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [level.yaml]",
		Short: "Check a level file and print its agent/box assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [level.yaml] [plan.txt]",
		Short: "Render a level, or replay a saved plan on it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := ""
			if len(args) == 2 {
				planPath = args[1]
			}
			return runShow(cmd, args[0], planPath)
		},
	}
}
