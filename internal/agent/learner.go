package agent

import (
	"io"
	"math/rand"

	"fuel-rl/internal/model"
)

// Transition is one (s, a, r, s', done) tuple handed to a learner.
type Transition struct {
	Observation model.Observation
	Action      model.Action
	Reward      float64
	Next        model.Observation
	Terminated  bool
}

// Learner improves an action-selection function from transitions.
type Learner interface {
	// Explore picks the behaviour action while training.
	Explore(obs model.Observation, epsilon float64, rng *rand.Rand) model.Action
	Update(t Transition) error
	// Greedy is the learned action-selection function.
	Greedy(obs model.Observation) model.Action
}

// Checkpointer persists a learner as an opaque artifact.
type Checkpointer interface {
	Save(w io.Writer) error
	Load(r io.Reader) error
}
