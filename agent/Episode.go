package agent

import (
	"fmt"

	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/timestep"
)

// Selector chooses an action in state among the legal actions
type Selector func(state int, actions []int) int

// Generate resets env and runs a single episode under choose, recording
// each step in trace. An episode cut off by limit has penalty subtracted
// from its final reward.
//
// Generate is used by agents which learn from whole episodes once they
// have ended.
func Generate(env environment.Environment, trace *timestep.Trace,
	choose Selector, limit environment.StepLimit, penalty float64) error {
	trace.Reset()
	if err := env.Reset(); err != nil {
		return err
	}

	for steps := 1; !env.IsGameOver(); steps++ {
		state := env.StateID()
		actions := env.AvailableActions()
		if len(actions) == 0 {
			break
		}
		action := choose(state, actions)

		reward, err := environment.Act(env, action)
		if err != nil {
			return fmt.Errorf("step %v: %w", steps, err)
		}
		trace.Add(timestep.Step{
			State:   state,
			Actions: actions,
			Action:  action,
			Reward:  reward,
		})

		if limit.End(steps) && !env.IsGameOver() {
			trace.SetLastReward(reward - penalty)
			break
		}
	}
	trace.Finish()
	return nil
}
