package experiment

// Register every agent Type so that any agent.TypedConfig can be created
import (
	_ "github.com/samuelfneumann/rllab/agent/linear/dqn"
	_ "github.com/samuelfneumann/rllab/agent/linear/sgsarsa"
	_ "github.com/samuelfneumann/rllab/agent/montecarlo"
	_ "github.com/samuelfneumann/rllab/agent/planning"
	_ "github.com/samuelfneumann/rllab/agent/policygradient/reinforce"
	_ "github.com/samuelfneumann/rllab/agent/tabular/dynaq"
	_ "github.com/samuelfneumann/rllab/agent/tabular/qlearning"
	_ "github.com/samuelfneumann/rllab/agent/tabular/sarsa"
)
