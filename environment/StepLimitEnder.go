package environment

// StepLimit implements the Ender interface to end episodes at specific
// step limits. A StepLimit with a non-positive limit never ends an
// episode.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End determines whether or not the current episode should be ended
// after steps steps have been taken
func (s StepLimit) End(steps int) bool {
	return s.episodeSteps > 0 && steps >= s.episodeSteps
}

// Steps returns the step limit
func (s StepLimit) Steps() int {
	return s.episodeSteps
}
