package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment/envconfig"
)

// ListCommand returns the command listing environments and agents
func ListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available environments and agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Environments: %v\n",
				strings.Join(envconfig.Names(), ", "))
			fmt.Fprintf(out, "Agents: %v\n",
				strings.Join(agent.Registered(), ", "))
			return nil
		},
	}
}
