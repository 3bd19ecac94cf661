package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"fuel-rl/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// numFeatures is the observation size plus a bias term.
const numFeatures = model.ObservationSize + 1

// Params are the Q-learning hyper-parameters.
type Params struct {
	LearningRate float64 `json:"learning_rate"`
	Gamma        float64 `json:"gamma"`
}

func (p Params) Validate() error {
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return fmt.Errorf("learning_rate must be in (0, 1], got %v", p.LearningRate)
	}
	if p.Gamma < 0 || p.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], got %v", p.Gamma)
	}
	return nil
}

// Normalizer z-scores observations. Near-zero deviations are replaced by 1 so
// constant columns (duty and VAT rates are flat for years) map to 0.
type Normalizer struct {
	Mean [model.ObservationSize]float64
	Std  [model.ObservationSize]float64
}

// IdentityNormalizer leaves observations unchanged.
func IdentityNormalizer() Normalizer {
	var n Normalizer
	for i := range n.Std {
		n.Std[i] = 1
	}
	return n
}

// NormalizerFromDataset estimates per-field mean and standard deviation.
func NormalizerFromDataset(data *model.Dataset) Normalizer {
	n := IdentityNormalizer()
	if data.Len() < 2 {
		return n
	}
	for _, f := range model.Fields() {
		mean, std := stat.MeanStdDev(data.Column(f), nil)
		n.Mean[f] = mean
		if std > 1e-9*math.Max(1, math.Abs(mean)) {
			n.Std[f] = std
		}
	}
	return n
}

// LinearQ approximates Q(s, a) = w_a · φ(s), with φ the normalized
// observation followed by a constant 1. It is trained with semi-gradient
// Q-learning.
type LinearQ struct {
	weights *mat.Dense // NumActions x numFeatures
	norm    Normalizer
	params  Params
	updates int
}

func NewLinearQ(norm Normalizer, params Params) (*LinearQ, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, s := range norm.Std {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("normalizer std[%d] must be positive and finite, got %v", i, s)
		}
	}
	return &LinearQ{
		weights: mat.NewDense(model.NumActions, numFeatures, nil),
		norm:    norm,
		params:  params,
	}, nil
}

func (q *LinearQ) Name() string { return "qlearn" }

func (q *LinearQ) Params() Params { return q.params }

// Updates is the number of transitions learned from.
func (q *LinearQ) Updates() int { return q.updates }

func (q *LinearQ) features(obs model.Observation) *mat.VecDense {
	phi := make([]float64, numFeatures)
	for i, v := range obs {
		phi[i] = (v - q.norm.Mean[i]) / q.norm.Std[i]
	}
	phi[numFeatures-1] = 1
	return mat.NewVecDense(numFeatures, phi)
}

// Values returns Q(obs, a) for every action in code order.
func (q *LinearQ) Values(obs model.Observation) []float64 {
	var out mat.VecDense
	out.MulVec(q.weights, q.features(obs))
	return out.RawVector().Data
}

// Greedy returns the highest-valued action; ties go to the lowest code,
// so an untrained agent holds.
func (q *LinearQ) Greedy(obs model.Observation) model.Action {
	return model.Action(floats.MaxIdx(q.Values(obs)))
}

// Explore is ε-greedy over Greedy.
func (q *LinearQ) Explore(obs model.Observation, epsilon float64, rng *rand.Rand) model.Action {
	if rng.Float64() < epsilon {
		return model.Action(rng.Intn(model.NumActions))
	}
	return q.Greedy(obs)
}

// Update applies one Q-learning step:
// w_a += α (r + γ max_a' Q(s', a') − Q(s, a)) φ(s), without bootstrap on terminal steps.
func (q *LinearQ) Update(t Transition) error {
	if !t.Action.Valid() {
		return fmt.Errorf("update with invalid action %d", int(t.Action))
	}
	if math.IsNaN(t.Reward) || math.IsInf(t.Reward, 0) {
		return errors.New("update with non-finite reward")
	}
	target := t.Reward
	if !t.Terminated && q.params.Gamma > 0 {
		target += q.params.Gamma * floats.Max(q.Values(t.Next))
	}
	phi := q.features(t.Observation)
	row := q.weights.RawRowView(int(t.Action))
	tdErr := target - mat.Dot(q.weights.RowView(int(t.Action)), phi)
	floats.AddScaled(row, q.params.LearningRate*tdErr, phi.RawVector().Data)
	q.updates++
	return nil
}
