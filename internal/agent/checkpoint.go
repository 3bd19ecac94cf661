package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fuel-rl/internal/model"

	"gonum.org/v1/gonum/mat"
)

// KindLinearQ tags LinearQ checkpoints.
const KindLinearQ = "linear_q"

const checkpointVersion = 1

// Checkpoint is the serialized form of a LinearQ. Weights are stored one
// row per action, in action code order.
type Checkpoint struct {
	Kind    string      `json:"kind"`
	Version int         `json:"version"`
	Actions []string    `json:"actions"`
	Mean    []float64   `json:"mean"`
	Std     []float64   `json:"std"`
	Weights [][]float64 `json:"weights"`
	Params  Params      `json:"params"`
	Updates int         `json:"updates"`
	SavedAt time.Time   `json:"saved_at"`
}

func (q *LinearQ) Checkpoint() Checkpoint {
	c := Checkpoint{
		Kind:    KindLinearQ,
		Version: checkpointVersion,
		Mean:    append([]float64(nil), q.norm.Mean[:]...),
		Std:     append([]float64(nil), q.norm.Std[:]...),
		Params:  q.params,
		Updates: q.updates,
		SavedAt: time.Now().UTC(),
	}
	for _, a := range model.Actions() {
		c.Actions = append(c.Actions, a.String())
		c.Weights = append(c.Weights, append([]float64(nil), q.weights.RawRowView(int(a))...))
	}
	return c
}

// FromCheckpoint rebuilds a LinearQ, rejecting checkpoints of another kind
// or shape.
func FromCheckpoint(c Checkpoint) (*LinearQ, error) {
	if c.Kind != KindLinearQ {
		return nil, fmt.Errorf("checkpoint kind %q, want %q", c.Kind, KindLinearQ)
	}
	if c.Version != checkpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d", c.Version)
	}
	if len(c.Mean) != model.ObservationSize || len(c.Std) != model.ObservationSize {
		return nil, fmt.Errorf("checkpoint normalizer has %d/%d fields, want %d", len(c.Mean), len(c.Std), model.ObservationSize)
	}
	if len(c.Weights) != model.NumActions {
		return nil, fmt.Errorf("checkpoint has %d weight rows, want %d", len(c.Weights), model.NumActions)
	}
	var norm Normalizer
	copy(norm.Mean[:], c.Mean)
	copy(norm.Std[:], c.Std)
	q, err := NewLinearQ(norm, c.Params)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	data := make([]float64, 0, model.NumActions*numFeatures)
	for i, row := range c.Weights {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("checkpoint weight row %d has %d values, want %d", i, len(row), numFeatures)
		}
		data = append(data, row...)
	}
	q.weights = mat.NewDense(model.NumActions, numFeatures, data)
	q.updates = c.Updates
	return q, nil
}

// Save writes the checkpoint as JSON.
func (q *LinearQ) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(q.Checkpoint())
}

// Load replaces q with the checkpoint read from r.
func (q *LinearQ) Load(r io.Reader) error {
	loaded, err := LoadLinearQ(r)
	if err != nil {
		return err
	}
	*q = *loaded
	return nil
}

func LoadLinearQ(r io.Reader) (*LinearQ, error) {
	var c Checkpoint
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return FromCheckpoint(c)
}

func (q *LinearQ) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := q.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string) (*LinearQ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	q, err := LoadLinearQ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}
