package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rllab/experiment"
	"github.com/samuelfneumann/rllab/experiment/tracker"
)

// TrainCommand returns the command training a single agent
func TrainCommand() *cobra.Command {
	var plotFile, returnsFile string
	var window int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an agent, or load its snapshot, and run its greedy policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			if c, err = selectConfig(cmd, c); err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}

			var trackers []tracker.Tracker
			if returnsFile != "" {
				trackers = append(trackers, tracker.NewReturn(returnsFile))
			}
			if plotFile != "" {
				title := fmt.Sprintf("%v on %v", c.Agent.Type, c.Env.Environment)
				trackers = append(trackers, tracker.NewCurve(plotFile, title,
					window))
			}

			exp, err := c.CreateExp(c.Seed, store, trackers...)
			if err != nil {
				return err
			}
			env := exp.Env()
			fmt.Printf("Training %v on %v: %v states, %v actions\n",
				c.Agent.Type, env, env.NumStates(), env.NumActions())

			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			if result.Loaded {
				fmt.Println("Loaded snapshot, training skipped")
			} else {
				fmt.Printf("Average return over training: %.2f\n",
					result.MeanReturn())
				if err := exp.Save(); err != nil {
					return err
				}
			}

			fmt.Println("\nLearned policy:")
			greedy, err := experiment.Demonstrate(os.Stdout, env, exp.Agent(),
				c.RolloutSteps())
			if err != nil {
				return err
			}
			fmt.Printf("Total reward from running the policy: %v\n", greedy)
			return nil
		},
	}

	cmd.Flags().StringVar(&plotFile, "plot", "", "Save a PNG learning curve")
	cmd.Flags().StringVar(&returnsFile, "returns", "",
		"Save the gob encoded training returns")
	cmd.Flags().IntVar(&window, "window", 50,
		"Moving average window of the learning curve")
	return cmd
}
