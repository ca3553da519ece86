// Command gen_instances writes deterministic random levels for benchmarks.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapf-hospital/internal/level"
)

// scalingAgents is the agent sweep written by --scaling.
var scalingAgents = []int{1, 2, 4, 6, 8, 10}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		p       level.GenParams
		output  string
		scaling bool
	)

	cmd := &cobra.Command{
		Use:          "gen_instances",
		Short:        "Generate random box-pushing levels",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(output, 0o755); err != nil {
				return err
			}
			params := []level.GenParams{p}
			if scaling {
				params = params[:0]
				for _, n := range scalingAgents {
					q := p
					q.Agents = n
					q.Colors = n
					params = append(params, q)
				}
			}
			for _, q := range params {
				path, err := writeLevel(output, q)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64Var(&p.Seed, "seed", 42, "random seed")
	f.IntVar(&p.Rows, "rows", 10, "grid rows, border included")
	f.IntVar(&p.Cols, "cols", 14, "grid columns, border included")
	f.IntVar(&p.Agents, "agents", 2, "number of agents (1-10)")
	f.IntVar(&p.Colors, "colors", 2, "number of distinct colors")
	f.IntVar(&p.Boxes, "boxes", 1, "boxes per agent")
	f.Float64Var(&p.WallDensity, "walls", 0.15, "interior wall density (0-1)")
	f.BoolVar(&p.AgentGoals, "agent-goals", false, "give every agent a goal cell")
	f.StringVarP(&output, "output", "o", "testdata", "output directory")
	f.BoolVar(&scaling, "scaling", false, "write an agent-count sweep instead of one level")
	return cmd
}

func writeLevel(dir string, p level.GenParams) (string, error) {
	spec, err := level.Generate(p)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, spec.Name+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := encode(f, spec); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}

func encode(w io.Writer, spec *level.Spec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return err
	}
	return enc.Close()
}
