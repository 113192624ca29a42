// Package envconfig provides configuration structs for configuring
// environments with default parameters. Environment configurations in
// this package are JSON serializable.
package envconfig

import (
	"fmt"
	"sort"
	"strings"

	env "github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/environment/gridworld"
	"github.com/samuelfneumann/rllab/environment/lineworld"
	"github.com/samuelfneumann/rllab/environment/montyhall"
	"github.com/samuelfneumann/rllab/environment/rps"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	LineWorld  EnvName = "lineworld"
	GridWorld  EnvName = "gridworld"
	RPS        EnvName = "rps"
	MontyHall  EnvName = "montyhall"
	MontyHall2 EnvName = "montyhall2"
)

// Names returns the names of all configurable environments in sorted
// order
func Names() []string {
	names := []string{
		string(LineWorld), string(GridWorld), string(RPS), string(MontyHall),
		string(MontyHall2),
	}
	sort.Strings(names)
	return names
}

// Config implements a specific configuration of a specific environment.
// Zero-valued fields take the environment's defaults; fields that do not
// apply to the configured environment are ignored.
type Config struct {
	Environment EnvName
	Cells       int `json:",omitempty"`
	Rows        int `json:",omitempty"`
	Cols        int `json:",omitempty"`
	Rounds      int `json:",omitempty"`
	Doors       int `json:",omitempty"`
}

// NewConfig returns a new environment Config with default parameters
func NewConfig(envName EnvName) Config {
	return Config{Environment: EnvName(strings.ToLower(string(envName)))}
}

// Create returns the environment described by the Config. Stochastic
// environments are seeded with seed.
func (c Config) Create(seed uint64) (env.Environment, error) {
	var (
		e   env.Environment
		err error
	)

	switch EnvName(strings.ToLower(string(c.Environment))) {
	case LineWorld:
		e, err = wrap(lineworld.New(orDefault(c.Cells, lineworld.DefaultCells)))

	case GridWorld:
		e, err = wrap(gridworld.NewDefault(
			orDefault(c.Rows, gridworld.DefaultRows),
			orDefault(c.Cols, gridworld.DefaultCols),
		))

	case RPS:
		e, err = wrap(rps.New(orDefault(c.Rounds, rps.DefaultRounds), seed))

	case MontyHall:
		e, err = wrap(montyhall.New(orDefault(c.Doors, montyhall.ClassicDoors),
			seed))

	case MontyHall2:
		e, err = wrap(montyhall.New(orDefault(c.Doors, montyhall.ExtendedDoors),
			seed))

	default:
		return nil, fmt.Errorf("create: cannot create environment %q, no "+
			"such environment", c.Environment)
	}

	if err != nil {
		return nil, fmt.Errorf("create: %v: %w", c.Environment, err)
	}
	return e, nil
}

// wrap converts the concrete return values of an environment constructor
// so that a failed construction never yields a non-nil interface
func wrap(e env.Environment, err error) (env.Environment, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

func orDefault(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}
