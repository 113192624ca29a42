package environment

import (
	"errors"
	"fmt"
)

// Error implements errors returned by environments when they are used
// incorrectly
type Error struct {
	Op  string
	Env string
	Err error
}

// Error satisfies the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v: %v", e.Env, e.Op, e.Err)
}

// Unwrap returns the underlying sentinel error
func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidAction is returned when stepping with an action that is
	// not currently available
	ErrInvalidAction = errors.New("invalid action")

	// ErrAlreadyTerminal is returned when stepping after the episode
	// has ended
	ErrAlreadyTerminal = errors.New("episode already terminal")
)

// NewInvalidAction returns an *Error reporting that action is not legal
// in the current state of env
func NewInvalidAction(env Environment, action int) error {
	return &Error{
		Op:  "step",
		Env: env.String(),
		Err: fmt.Errorf("%w %v in state %v (legal: %v)", ErrInvalidAction,
			action, env.StateID(), env.AvailableActions()),
	}
}

// NewAlreadyTerminal returns an *Error reporting that env was stepped
// after its episode ended
func NewAlreadyTerminal(env Environment) error {
	return &Error{Op: "step", Env: env.String(), Err: ErrAlreadyTerminal}
}

// IsInvalidAction returns whether or not an error reports that an
// illegal action was taken
func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}

// IsAlreadyTerminal returns whether or not an error reports that an
// environment was stepped after its episode ended
func IsAlreadyTerminal(err error) bool {
	return errors.Is(err, ErrAlreadyTerminal)
}

// ValidateStep checks the preconditions of Step, returning the
// appropriate *Error if they are violated
func ValidateStep(env Environment, action int) error {
	if env.IsGameOver() {
		return NewAlreadyTerminal(env)
	}
	if !Legal(action, env.AvailableActions()) {
		return NewInvalidAction(env, action)
	}
	return nil
}
