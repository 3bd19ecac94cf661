package policy

import (
	"fmt"
	"math"

	"fuel-rl/internal/model"
)

// Oracle is a perfect-foresight policy. It computes a plan up-front from the
// whole dataset: at every row it picks the action with the largest reward for
// the move to the next row. Steps carry no position, so the per-step argmax
// is also the best episode.
//
// Notes:
//   - This is an upper bound for evaluating learned policies, not a tradable strategy.
//   - Moves no larger than MinMove are held.
type Oracle struct {
	plan []model.Action
}

type OracleParams struct {
	// MinMove is the smallest absolute price move (pence/litre) worth trading.
	MinMove float64
}

func NewOracle(data *model.Dataset, params OracleParams) (*Oracle, error) {
	if data.Len() < 2 {
		return nil, fmt.Errorf("oracle needs at least 2 rows, got %d", data.Len())
	}
	if params.MinMove < 0 {
		return nil, fmt.Errorf("min_move must be >= 0")
	}
	plan := make([]model.Action, data.Len())
	for i := 0; i+1 < data.Len(); i++ {
		plan[i] = bestAction(data.Record(i), data.Record(i+1), params.MinMove)
	}
	// The last row has no successor; Hold is never used there by a driver
	// but keeps Decide total.
	plan[len(plan)-1] = model.ActionHold
	return &Oracle{plan: plan}, nil
}

func (o *Oracle) Name() string { return "oracle" }

func (o *Oracle) Decide(ctx Context) model.Action {
	if ctx.Step < 0 || ctx.Step >= len(o.plan) {
		return model.ActionHold
	}
	return o.plan[ctx.Step]
}

// Plan returns a copy of the precomputed actions.
func (o *Oracle) Plan() []model.Action {
	out := make([]model.Action, len(o.plan))
	copy(out, o.plan)
	return out
}

func bestAction(prev, curr model.FuelRecord, minMove float64) model.Action {
	dP := curr.PumpPriceULSP - prev.PumpPriceULSP
	dD := curr.PumpPriceULSD - prev.PumpPriceULSD

	best, bestMove := model.ActionHold, minMove
	if math.Abs(dP) > bestMove {
		bestMove = math.Abs(dP)
		best = model.ActionBuyULSP
		if dP < 0 {
			best = model.ActionSellULSP
		}
	}
	if math.Abs(dD) > bestMove {
		best = model.ActionBuyULSD
		if dD < 0 {
			best = model.ActionSellULSD
		}
	}
	return best
}
