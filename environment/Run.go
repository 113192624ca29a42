package environment

import (
	"fmt"
)

// DefaultRunSteps bounds the length of policy rollouts when no explicit
// bound is given
const DefaultRunSteps = 1000

// Run executes the deterministic policy in env from a fresh episode until
// the game is over or maxSteps steps have been taken, returning the sum of
// rewards. Environments implementing PolicyRunner run the policy
// themselves.
//
// If the policy's action is unavailable in some state, the first
// available action is taken instead.
func Run(env Environment, policy []int, maxSteps int) (float64, error) {
	if runner, ok := env.(PolicyRunner); ok {
		return runner.RunPolicy(policy)
	}
	return Rollout(env, policy, maxSteps)
}

// Rollout is the generic implementation of Run which never defers to a
// PolicyRunner. It is useful for environments implementing RunPolicy.
func Rollout(env Environment, policy []int, maxSteps int) (float64, error) {
	if len(policy) != env.NumStates() {
		return 0, fmt.Errorf("run: policy covers %v states, environment has "+
			"%v", len(policy), env.NumStates())
	}
	if maxSteps <= 0 {
		maxSteps = DefaultRunSteps
	}

	if err := env.Reset(); err != nil {
		return 0, fmt.Errorf("run: %w", err)
	}

	limit := NewStepLimit(maxSteps)
	total := 0.0
	for steps := 0; !env.IsGameOver() && !limit.End(steps); steps++ {
		actions := env.AvailableActions()
		action := policy[env.StateID()]
		if !Legal(action, actions) {
			action = actions[0]
		}

		reward, err := Act(env, action)
		if err != nil {
			return total, fmt.Errorf("run: %w", err)
		}
		total += reward
	}
	return total, nil
}
