// Package testenv provides small environments used to exercise edge
// cases of agents in tests
package testenv

import (
	"fmt"
	"io"

	"github.com/samuelfneumann/rllab/environment"
)

// Loop is an environment with a single state that never ends. Every
// step increases the score by Reward.
type Loop struct {
	Reward float64
	Steps  int
	score  float64
}

// Reset implements the environment.Environment interface
func (l *Loop) Reset() error {
	l.score = 0
	return nil
}

// StateID implements the environment.Environment interface
func (l *Loop) StateID() int { return 0 }

// NumStates implements the environment.Environment interface
func (l *Loop) NumStates() int { return 1 }

// NumActions implements the environment.Environment interface
func (l *Loop) NumActions() int { return 1 }

// AvailableActions implements the environment.Environment interface
func (l *Loop) AvailableActions() []int { return []int{0} }

// IsGameOver implements the environment.Environment interface
func (l *Loop) IsGameOver() bool { return false }

// Score implements the environment.Environment interface
func (l *Loop) Score() float64 { return l.score }

// Step implements the environment.Environment interface
func (l *Loop) Step(action int) error {
	if err := environment.ValidateStep(l, action); err != nil {
		return err
	}
	l.Steps++
	l.score += l.Reward
	return nil
}

// Display implements the environment.Environment interface
func (l *Loop) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Loop | Steps: %v\n", l.Steps)
	return err
}

func (l *Loop) String() string { return "Loop" }

// Broken is an environment which reports an action as available but
// refuses to take it
type Broken struct {
	Loop
}

// Step implements the environment.Environment interface
func (b *Broken) Step(action int) error {
	return environment.NewInvalidAction(b, action)
}

func (b *Broken) String() string { return "Broken" }
