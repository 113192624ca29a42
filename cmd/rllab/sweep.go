package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rllab/experiment"
	"github.com/samuelfneumann/rllab/experiment/tracker"
)

// SweepCommand returns the command repeating an experiment over seeds
func SweepCommand() *cobra.Command {
	var runs, window int
	var plotFile string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repeat training over consecutive seeds and summarize",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			if configFile == "" || cmd.Flags().Changed("runs") {
				c.Runs = runs
			}
			if c.Grid != nil && !cmd.Flags().Changed("index") {
				return sweepGrid(cmd, c)
			}
			if c, err = selectConfig(cmd, c); err != nil {
				return err
			}

			results, err := experiment.Sweep(cmd.Context(), c, os.Stderr)
			if len(results) > 0 {
				fmt.Println(experiment.Summarize(results))
			}
			if err != nil {
				return err
			}

			if plotFile != "" {
				title := fmt.Sprintf("%v on %v, mean of %v runs", c.Agent.Type,
					c.Env.Environment, len(results))
				curve := tracker.NewCurve(plotFile, title, window)
				for i, ret := range experiment.MeanCurve(results) {
					curve.Track(i, ret)
				}
				return curve.Save()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 10, "Number of runs")
	cmd.Flags().StringVar(&plotFile, "plot", "",
		"Save a PNG of the mean learning curve")
	cmd.Flags().IntVar(&window, "window", 50,
		"Moving average window of the learning curve")
	return cmd
}

// sweepGrid sweeps every agent configuration of the Grid of c and
// prints the summary of each
func sweepGrid(cmd *cobra.Command, c experiment.Config) error {
	grid, err := experiment.SweepGrid(cmd.Context(), c, os.Stderr)
	out := cmd.OutOrStdout()
	for _, g := range grid {
		fmt.Fprintf(out, "%v %+v\n    %v\n", g.Index, g.Agent, g.Summary())
	}
	if err != nil {
		return err
	}

	if best, ok := experiment.Best(grid); ok {
		fmt.Fprintf(out, "Best: %v %+v\n", best.Index, best.Agent)
	}
	return nil
}
