package environment

import (
	"fuel-rl/internal/model"
)

// FuelPriceEnv replays a fuel price dataset one row per step.
// Each step is an independent one-step bet on the price move of a fuel;
// no position is carried between steps.
//
// A FuelPriceEnv is single-owner: Reset and Step mutate the cursor and
// must not be called concurrently. Use one environment per rollout.
type FuelPriceEnv struct {
	data   *model.Dataset
	cursor int
}

// NewFuelPriceEnv builds an environment over data. At least two rows are
// required so that one step is possible.
func NewFuelPriceEnv(data *model.Dataset) (*FuelPriceEnv, error) {
	if data.Len() < 2 {
		return nil, &DatasetError{Rows: data.Len()}
	}
	return &FuelPriceEnv{data: data}, nil
}

// ObservationSpace is an unbounded box of model.ObservationSize floats.
func (e *FuelPriceEnv) ObservationSpace() Box { return UnboundedBox(model.ObservationSize) }

// ActionSpace is Discrete(model.NumActions).
func (e *FuelPriceEnv) ActionSpace() Discrete { return Discrete{N: model.NumActions} }

// Reset rewinds the cursor to the first row.
func (e *FuelPriceEnv) Reset() model.Observation {
	e.cursor = 0
	return e.data.Observation(0)
}

// Step advances the cursor by exactly one row and rewards the price move
// captured by the action between the previous and the new row.
func (e *FuelPriceEnv) Step(action model.Action) (StepResult, error) {
	if e.Terminated() {
		return StepResult{}, &StepError{Kind: ErrEpisodeAlreadyTerminated, Step: e.cursor, Action: action}
	}
	if !action.Valid() {
		return StepResult{}, &StepError{Kind: ErrInvalidAction, Step: e.cursor, Action: action}
	}

	prev := e.data.Record(e.cursor)
	e.cursor++
	curr := e.data.Record(e.cursor)

	return StepResult{
		Observation: curr.Observation(),
		Reward:      Reward(action, prev, curr),
		Terminated:  e.Terminated(),
		Truncated:   false,
		Info:        map[string]any{},
	}, nil
}

// Terminated reports whether the cursor sits on the last row.
func (e *FuelPriceEnv) Terminated() bool {
	return e.cursor >= e.data.Len()-1
}

// Cursor returns the current row index.
func (e *FuelPriceEnv) Cursor() int { return e.cursor }

// CurrentRecord returns the row under the cursor.
func (e *FuelPriceEnv) CurrentRecord() model.FuelRecord { return e.data.Record(e.cursor) }

// Dataset returns the rows the environment steps through.
func (e *FuelPriceEnv) Dataset() *model.Dataset { return e.data }

// Reward is the one-step payoff of action between two consecutive rows:
// buying earns the rise of the fuel price, selling earns the fall, holding earns nothing.
func Reward(action model.Action, prev, curr model.FuelRecord) float64 {
	fuel, long, ok := action.Fuel()
	if !ok {
		return 0
	}
	move := curr.Price(fuel) - prev.Price(fuel)
	if long {
		return move
	}
	return -move
}
