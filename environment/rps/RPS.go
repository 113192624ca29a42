// Package rps implements a multi-round game of rock-paper-scissors
// against an opponent who plays uniformly at random.
//
// The state is the opponent's previous move, or Initial before the first
// round. The score is the cumulative round outcome: +1 for a win, -1 for
// a loss, and 0 for a draw.
package rps

import (
	"fmt"
	"io"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rllab/environment"
)

// Moves, which double as actions and as the opponent's last move
const (
	Rock int = iota
	Paper
	Scissors
)

const (
	// Initial is the state before any round has been played
	Initial int = 3

	// DefaultRounds is the number of rounds in a game
	DefaultRounds int = 2
)

var moveNames = [...]string{"Rock", "Paper", "Scissors"}

// RPS implements the rock-paper-scissors environment
type RPS struct {
	rounds       int
	currentRound int
	score        float64
	opponentLast int
	rng          *rand.Rand
}

// New returns a new game of the given number of rounds. The opponent's
// moves are drawn from a source seeded with seed.
func New(rounds int, seed uint64) (*RPS, error) {
	if rounds < 1 {
		return nil, fmt.Errorf("new: rounds must be positive, have %v",
			rounds)
	}

	r := &RPS{
		rounds: rounds,
		rng:    rand.New(rand.NewSource(seed)),
	}
	return r, r.Reset()
}

// Reset implements the environment.Environment interface
func (r *RPS) Reset() error {
	r.currentRound = 0
	r.score = 0
	r.opponentLast = Initial
	return nil
}

// Round returns the number of rounds played so far
func (r *RPS) Round() int {
	return r.currentRound
}

// StateID implements the environment.Environment interface
func (r *RPS) StateID() int {
	return r.opponentLast
}

// NumStates implements the environment.Environment interface
func (r *RPS) NumStates() int {
	return 4
}

// NumActions implements the environment.Environment interface
func (r *RPS) NumActions() int {
	return 3
}

// AvailableActions implements the environment.Environment interface
func (r *RPS) AvailableActions() []int {
	if r.IsGameOver() {
		return []int{}
	}
	return []int{Rock, Paper, Scissors}
}

// IsGameOver implements the environment.Environment interface
func (r *RPS) IsGameOver() bool {
	return r.currentRound >= r.rounds
}

// Score implements the environment.Environment interface
func (r *RPS) Score() float64 {
	return r.score
}

// Step implements the environment.Environment interface
func (r *RPS) Step(action int) error {
	if err := environment.ValidateStep(r, action); err != nil {
		return err
	}

	opponent := r.rng.Intn(3)
	r.score += Outcome(action, opponent)
	r.opponentLast = opponent
	r.currentRound++
	return nil
}

// Outcome returns the score of playing player against opponent
func Outcome(player, opponent int) float64 {
	switch (player - opponent + 3) % 3 {
	case 0:
		return 0.0
	case 1:
		return 1.0
	default:
		return -1.0
	}
}

// Display implements the environment.Environment interface
func (r *RPS) Display(w io.Writer) error {
	last := "none"
	if r.opponentLast != Initial {
		last = moveNames[r.opponentLast]
	}
	_, err := fmt.Fprintf(w, "Round: %d/%d  |  Score: %.0f  |  Opponent's "+
		"last move: %v\n", r.currentRound, r.rounds, r.score, last)
	return err
}

func (r *RPS) String() string {
	return fmt.Sprintf("RPS%d", r.rounds)
}
