package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment/envconfig"
	"github.com/samuelfneumann/rllab/experiment"
	"github.com/samuelfneumann/rllab/experiment/checkpointer"
)

// Environment variables read after loading .env
const (
	storeEnv     = "RLLAB_STORE"
	redisAddrEnv = "RLLAB_REDIS_ADDR"
	logLevelEnv  = "RLLAB_LOG_LEVEL"
)

// Flags shared by all commands
var (
	logLevel   string
	storeURI   string
	envName    string
	agentName  string
	episodes   int
	seed       uint64
	configFile string
	index      int
)

// GetRootCommand returns the rllab command with all subcommands added
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "rllab",
		Short:         "Train and evaluate tabular reinforcement learning agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Logging level")
	flags.StringVar(&storeURI, "store", "",
		"Snapshot store, a directory or redis://host:port")
	flags.StringVar(&envName, "env", "lineworld", "Environment to train on")
	flags.StringVar(&agentName, "agent", "qlearning", "Agent to train")
	flags.IntVarP(&episodes, "episodes", "e", 1000, "Number of training episodes")
	flags.Uint64Var(&seed, "seed", 42, "Seed of the environment and agent")
	flags.StringVar(&configFile, "config", "",
		"Experiment JSON file, overridden by explicitly set flags")
	flags.IntVar(&index, "index", 0,
		"Agent configuration of the experiment file's Grid to use")

	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(SweepCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(ListCommand())
	return rootCommand
}

// setup loads .env, configures logging and fills unset flags from the
// environment
func setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("log-level") && os.Getenv(logLevelEnv) != "" {
		logLevel = os.Getenv(logLevelEnv)
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if !flags.Changed("store") {
		storeURI = os.Getenv(storeEnv)
		if addr := os.Getenv(redisAddrEnv); storeURI == "" && addr != "" {
			storeURI = "redis://" + addr
		}
	}
	return nil
}

// buildConfig returns the experiment configuration described by the
// --config file and the flags. Flags set explicitly override the file.
func buildConfig(cmd *cobra.Command) (experiment.Config, error) {
	if configFile == "" {
		c, err := experiment.NewConfig(envName, agentName, episodes)
		c.Seed = seed
		return c, err
	}

	c, err := experiment.LoadConfig(configFile)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("env") {
		c.Env = envconfig.NewConfig(envconfig.EnvName(envName))
	}
	if flags.Changed("agent") {
		agentType, err := agent.Lookup(agentName)
		if err != nil {
			return c, err
		}
		defaults, err := agent.Default(agentType)
		if err != nil {
			return c, err
		}
		c.Agent = agent.NewTypedConfig(defaults)
		c.Grid = nil
	}
	if flags.Changed("episodes") {
		c.Episodes = episodes
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	return c, nil
}

// selectConfig returns c with the agent configuration --index of its
// Grid selected. Without a Grid, or with an agent configured and no
// --index given, c is returned unchanged.
func selectConfig(cmd *cobra.Command, c experiment.Config) (
	experiment.Config, error) {
	if c.Grid == nil {
		return c, nil
	}
	if c.Agent.Config != nil && !cmd.Flags().Changed("index") {
		c.Grid = nil
		return c, nil
	}
	return c.At(index)
}

// openStore opens the configured store, nil if none is configured
func openStore() (checkpointer.Store, error) {
	if storeURI == "" {
		return nil, nil
	}
	log.WithField("store", storeURI).Debug("opening snapshot store")
	return checkpointer.Open(storeURI)
}
