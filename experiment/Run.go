package experiment

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/experiment/checkpointer"
	"github.com/samuelfneumann/rllab/experiment/tracker"
)

// Experiment trains a single agent on a single environment and then
// evaluates the agent's greedy policy
type Experiment struct {
	env       environment.Environment
	agent     agent.Agent
	agentType agent.Type
	config    agent.Config
	seed      uint64

	episodes   int
	evalSteps  int
	checkpoint int

	trackers []tracker.Tracker
	store    checkpointer.Store
}

// Result is the outcome of running an Experiment
type Result struct {
	Seed uint64

	// Returns holds the return of each episode trained by the run. It is
	// empty if the agent was restored from a snapshot and excludes the
	// episodes restored from a checkpoint.
	Returns []float64

	// Loaded reports whether the agent was restored from a snapshot
	// instead of being trained
	Loaded bool

	// Resumed is the number of episodes restored from the checkpoint of
	// an unfinished run
	Resumed int

	// Greedy is the return of a rollout of the greedy policy
	Greedy float64
}

// MeanReturn returns the mean training return, 0 if the agent was not
// trained
func (r Result) MeanReturn() float64 {
	if len(r.Returns) == 0 {
		return 0
	}
	return stat.Mean(r.Returns, nil)
}

// Env returns the environment of the Experiment
func (e *Experiment) Env() environment.Environment {
	return e.env
}

// Agent returns the agent of the Experiment
func (e *Experiment) Agent() agent.Agent {
	return e.agent
}

// Register adds a new tracker.Tracker to the experiment
func (e *Experiment) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// Run runs the experiment. If the Experiment has a store holding a
// snapshot of its agent, the snapshot is loaded and training is
// skipped. Otherwise, training resumes from the checkpoint of an
// unfinished run if there is one and the agent is saved once all
// episodes have been trained.
//
// Snapshots whose tables do not fit the environment are ignored.
func (e *Experiment) Run(ctx context.Context) (Result, error) {
	result := Result{Seed: e.seed}
	logger := log.WithFields(log.Fields{
		"agent":       e.agentType,
		"environment": e.env.String(),
		"seed":        e.seed,
	})

	_, serializable := e.agent.(checkpointer.Serializable)
	persist := e.store != nil && serializable
	if e.store != nil && !serializable {
		logger.Warn("agent cannot be serialized, ignoring store")
	}
	key := Key(e.env, e.agentType)

	if persist {
		loaded, err := e.restore(ctx, key, nil)
		if err != nil {
			return result, fmt.Errorf("run: %w", err)
		}
		result.Loaded = loaded

		if !loaded {
			progress := &checkpointer.Progress{}
			resumed, err := e.restore(ctx, checkpointer.PartialKey(key),
				progress)
			if err != nil {
				return result, fmt.Errorf("run: %w", err)
			}
			if resumed {
				result.Resumed = min(progress.Episodes, e.episodes)
				logger.WithField("episodes", result.Resumed).Info(
					"resuming from checkpoint")
			}
		}
	}

	if result.Loaded {
		logger.WithField("key", key).Info("loaded snapshot, skipping training")
	} else {
		returns, err := e.train(ctx, persist, key, result.Resumed)
		if err != nil {
			return result, fmt.Errorf("run: %w", err)
		}
		result.Returns = returns
		logger.WithFields(log.Fields{
			"episodes":   len(returns),
			"meanReturn": result.MeanReturn(),
		}).Info("trained")
	}

	greedy, err := Greedy(e.env, e.agent, e.evalSteps)
	if err != nil {
		return result, fmt.Errorf("run: %w", err)
	}
	result.Greedy = greedy
	return result, nil
}

// restore loads the snapshot stored under key into the agent, through
// progress if it is not nil. A snapshot sized for other dimensions than
// the environment's is discarded together with the agent it was loaded
// into, and restore reports false.
func (e *Experiment) restore(ctx context.Context, key string,
	progress *checkpointer.Progress) (bool, error) {
	var obj checkpointer.Serializable = e.agent.(checkpointer.Serializable)
	if progress != nil {
		progress.Object = obj
		obj = progress
	}

	loaded, err := e.store.Load(ctx, key, obj)
	if err != nil || !loaded {
		return false, err
	}

	states, actions, ok := agent.Dims(e.agent)
	if !ok || (states == e.env.NumStates() && actions == e.env.NumActions()) {
		return true, nil
	}

	log.WithFields(log.Fields{
		"agent":       e.agentType,
		"environment": e.env.String(),
		"key":         key,
		"have":        []int{states, actions},
		"want":        []int{e.env.NumStates(), e.env.NumActions()},
	}).Warn("snapshot does not fit the environment, ignoring it")

	a, err := e.config.CreateAgent(e.env, e.seed)
	if err != nil {
		return false, fmt.Errorf("restore: %w", err)
	}
	e.agent = a
	return false, nil
}

// train trains the agent from episode start up to all episodes,
// tracking each return. With a positive checkpoint interval, training
// proceeds in chunks of that many episodes and the progress is
// checkpointed after each chunk. The agent is saved under key only once
// all episodes have been trained, after which the checkpoint is removed.
func (e *Experiment) train(ctx context.Context, persist bool, key string,
	start int) ([]float64, error) {
	chunk := e.episodes
	var check checkpointer.Checkpointer
	if persist && e.checkpoint > 0 {
		chunk = e.checkpoint
		serial := e.agent.(checkpointer.Serializable)
		c, err := checkpointer.NewNStep(e.checkpoint, serial, e.store, key)
		if err != nil {
			return nil, err
		}
		check = c
	}

	trained := start
	returns := make([]float64, 0, e.episodes-start)
	for trained < e.episodes || e.episodes == 0 {
		n := min(chunk, e.episodes-trained)
		r, err := e.agent.Train(e.env, n)
		for _, ret := range r {
			for _, t := range e.trackers {
				t.Track(len(returns), ret)
			}
			returns = append(returns, ret)
			trained++
		}
		if err != nil {
			return returns, err
		}

		if check != nil {
			if err := check.Checkpoint(ctx, trained); err != nil {
				return returns, err
			}
		}
		if e.episodes == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return returns, err
		}
	}

	if persist {
		serial := e.agent.(checkpointer.Serializable)
		if err := e.store.Save(ctx, key, serial); err != nil {
			return returns, err
		}
		partial := checkpointer.PartialKey(key)
		if err := e.store.Delete(ctx, partial); err != nil {
			return returns, err
		}
	}
	return returns, nil
}

// Save saves the data of all trackers
func (e *Experiment) Save() error {
	for _, t := range e.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}
