package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rllab/experiment"
)

// PlayCommand returns the command letting a human play against the
// score of a learned policy
func PlayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play an episode yourself, then watch the learned policy play",
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

			exp, err := c.CreateExp(c.Seed, store)
			if err != nil {
				return err
			}
			if _, err := exp.Run(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("Your turn, enter one action per line")
			human, err := experiment.Play(os.Stdin, os.Stdout, exp.Env(),
				c.RolloutSteps())
			if err != nil {
				return err
			}

			fmt.Printf("\n%v's turn\n", c.Agent.Type)
			learned, err := experiment.Demonstrate(os.Stdout, exp.Env(),
				exp.Agent(), c.RolloutSteps())
			if err != nil {
				return err
			}

			fmt.Printf("\nYou: %v | %v: %v\n", human, c.Agent.Type, learned)
			return nil
		},
	}
}
