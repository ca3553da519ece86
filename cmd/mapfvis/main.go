// Command mapfvis shows a level in a window and animates the plans of the
// selected solver.
package main

import (
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/config"
	"github.com/elektrokombinacija/mapf-hospital/internal/level"
	"github.com/elektrokombinacija/mapf-hospital/internal/vis"
)

func main() {
	var configPath, algorithm string

	cmd := &cobra.Command{
		Use:          "mapfvis [level.yaml]",
		Short:        "Visualize multi-agent box plans",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("algorithm") {
				cfg.Planner.Algorithm = algorithm
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			lvl, err := cfg.Log.SlogLevel()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

			l, err := level.Load(args[0])
			if err != nil {
				return err
			}

			application := vis.NewApp(l, algo.Options{
				Algorithm: cfg.Planner.Algorithm,
				Strategy:  cfg.Strategy(),
				MaxTime:   cfg.Planner.MaxTime,
				MaxNodes:  cfg.Planner.MaxNodes,
				Parallel:  cfg.Planner.Parallel,
				Logger:    logger,
			})

			go func() {
				window := new(app.Window)
				window.Option(
					app.Title("mapfvis: "+l.Name),
					app.Size(unit.Dp(1400), unit.Dp(900)),
				)
				if err := application.Run(window); err != nil {
					logger.Error("window closed", "err", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML planner configuration")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "initial solver: cbs, prioritized or joint")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
