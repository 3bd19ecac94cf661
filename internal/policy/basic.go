package policy

import (
	"math/rand"

	"fuel-rl/internal/model"
)

// Hold never trades. Every episode it plays scores exactly zero.
type Hold struct{}

func (Hold) Name() string                { return "hold" }
func (Hold) Decide(Context) model.Action { return model.ActionHold }

// Constant plays the same action every step.
type Constant struct {
	Action model.Action
}

func (c Constant) Name() string                { return "constant" }
func (c Constant) Decide(Context) model.Action { return c.Action }

// Random picks uniformly among all actions from its own seeded source.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Decide(Context) model.Action {
	return model.Action(r.rng.Intn(model.NumActions))
}

// Momentum bets that the last observed move of a fuel price continues:
// buy after a rise, sell after a fall, hold when flat or at the first step.
type Momentum struct {
	Fuel model.Fuel

	last    float64
	hasLast bool
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Decide(ctx Context) model.Action {
	price := ctx.Observation.Price(m.Fuel)
	if ctx.Step == 0 {
		m.hasLast = false
	}
	prev, ok := m.last, m.hasLast
	m.last, m.hasLast = price, true
	if !ok {
		return model.ActionHold
	}

	buy, sell := model.ActionBuyULSP, model.ActionSellULSP
	if m.Fuel == model.FuelULSD {
		buy, sell = model.ActionBuyULSD, model.ActionSellULSD
	}
	switch {
	case price > prev:
		return buy
	case price < prev:
		return sell
	default:
		return model.ActionHold
	}
}
