package experiment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

// Greedy resets env and runs a single episode of the greedy policy of a
// for at most maxSteps steps, returning the total reward
func Greedy(env environment.Environment, a agent.Agent,
	maxSteps int) (float64, error) {
	return Demonstrate(io.Discard, env, a, maxSteps)
}

// Demonstrate is Greedy, additionally writing each state, action and the
// final score to w
func Demonstrate(w io.Writer, env environment.Environment, a agent.Agent,
	maxSteps int) (float64, error) {
	if err := env.Reset(); err != nil {
		return 0, fmt.Errorf("demonstrate: %w", err)
	}
	if err := env.Display(w); err != nil {
		return 0, fmt.Errorf("demonstrate: %w", err)
	}

	total := 0.0
	limit := environment.NewStepLimit(maxSteps)
	steps := 0
	for ; !env.IsGameOver() && !limit.End(steps); steps++ {
		state := env.StateID()
		actions := env.AvailableActions()
		if len(actions) == 0 {
			break
		}
		action := a.BestAction(state, actions)
		fmt.Fprintf(w, "Step %v: state %v, available actions %v, taking %v\n",
			steps, state, actions, action)

		reward, err := environment.Act(env, action)
		if err != nil {
			return total, fmt.Errorf("demonstrate: %w", err)
		}
		total += reward
		if err := env.Display(w); err != nil {
			return total, fmt.Errorf("demonstrate: %w", err)
		}
	}

	if !env.IsGameOver() && limit.End(steps) {
		fmt.Fprintln(w, "Max steps reached, possible infinite loop")
	}
	fmt.Fprintf(w, "Final score: %v\n", env.Score())
	return total, nil
}

// Play lets a human play a single episode of env, reading one action per
// line from in and writing the environment to out. Lines which are not
// an available action are rejected and read again. Play returns the
// total reward of the episode.
func Play(in io.Reader, out io.Writer, env environment.Environment,
	maxSteps int) (float64, error) {
	if err := env.Reset(); err != nil {
		return 0, fmt.Errorf("play: %w", err)
	}

	scanner := bufio.NewScanner(in)
	limit := environment.NewStepLimit(maxSteps)
	total := 0.0
	for steps := 0; !env.IsGameOver() && !limit.End(steps); steps++ {
		if err := env.Display(out); err != nil {
			return total, fmt.Errorf("play: %w", err)
		}
		actions := env.AvailableActions()
		if len(actions) == 0 {
			break
		}

		action, err := readAction(scanner, out, actions)
		if err != nil {
			return total, fmt.Errorf("play: %w", err)
		}
		reward, err := environment.Act(env, action)
		if err != nil {
			return total, fmt.Errorf("play: %w", err)
		}
		total += reward
	}

	if err := env.Display(out); err != nil {
		return total, fmt.Errorf("play: %w", err)
	}
	fmt.Fprintf(out, "Final score: %v\n", env.Score())
	return total, nil
}

// errNoInput is returned when input ends before the episode does
var errNoInput = errors.New("input ended before the episode")

func readAction(scanner *bufio.Scanner, out io.Writer,
	actions []int) (int, error) {
	for {
		fmt.Fprintf(out, "Action %v: ", actions)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, errNoInput
		}

		action, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && slices.Contains(actions, action) {
			return action, nil
		}
		fmt.Fprintf(out, "%q is not an available action\n", scanner.Text())
	}
}
