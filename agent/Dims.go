package agent

import (
	log "github.com/sirupsen/logrus"

	"github.com/samuelfneumann/rllab/environment"
)

// Rebind reports whether tables sized for states states and actions
// actions must be reinitialized to train on env. A mismatch is logged:
// all previous learning of the agent is discarded.
func Rebind(agentType Type, states, actions int,
	env environment.Environment) bool {
	if states == env.NumStates() && actions == env.NumActions() {
		return false
	}

	log.WithFields(log.Fields{
		"agent":       agentType,
		"environment": env.String(),
		"have":        []int{states, actions},
		"want":        []int{env.NumStates(), env.NumActions()},
	}).Warn("environment dimensions changed, reinitializing agent")
	return true
}

// Dims returns the number of states and actions the tables of a are
// sized for. It reports false if a exposes neither.
func Dims(a Agent) (states, actions int, ok bool) {
	switch a := a.(type) {
	case Sizer:
		states, actions = a.Dims()
		return states, actions, true
	case QTabler:
		states, actions = a.QTable().Dims()
		return states, actions, true
	}
	return 0, 0, false
}

// Logger returns a logger carrying the fields common to all training
// runs
func Logger(agentType Type, env environment.Environment,
	episodes int) *log.Entry {
	return log.WithFields(log.Fields{
		"agent":       agentType,
		"environment": env.String(),
		"episodes":    episodes,
	})
}
