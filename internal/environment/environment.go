package environment

import (
	"math"
	"math/rand"

	"fuel-rl/internal/model"
)

// Env is the capability set every environment offers to drivers and learners.
type Env interface {
	Reset() model.Observation
	Step(action model.Action) (StepResult, error)
	ObservationSpace() Box
	ActionSpace() Discrete
}

// StepResult is the outcome of one transition.
// Info is always empty for the fuel environment but never nil.
type StepResult struct {
	Observation model.Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        map[string]any
}

// Box is a continuous space with per-dimension bounds.
type Box struct {
	Low  []float64
	High []float64
}

// UnboundedBox returns a box of the given dimension spanning (-Inf, +Inf).
func UnboundedBox(dim int) Box {
	b := Box{Low: make([]float64, dim), High: make([]float64, dim)}
	for i := 0; i < dim; i++ {
		b.Low[i] = math.Inf(-1)
		b.High[i] = math.Inf(1)
	}
	return b
}

// Shape returns the observation shape, always one-dimensional.
func (b Box) Shape() []int { return []int{len(b.Low)} }

// Contains reports whether v has the box dimension and every element lies
// within its bounds. NaN is never contained.
func (b Box) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if math.IsNaN(x) || x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// Discrete is the space {0, 1, ..., N-1}.
type Discrete struct {
	N int
}

// Contains reports whether a is a valid action index.
func (d Discrete) Contains(a model.Action) bool {
	return int(a) >= 0 && int(a) < d.N
}

// Sample draws a uniformly random action.
func (d Discrete) Sample(rng *rand.Rand) model.Action {
	return model.Action(rng.Intn(d.N))
}
