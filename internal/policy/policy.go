package policy

import "fuel-rl/internal/model"

// Context is what a policy sees before each step.
type Context struct {
	// Step is the number of steps taken in the current episode,
	// which equals the environment cursor for the fuel environment.
	Step        int
	Observation model.Observation
}

type Policy interface {
	Name() string
	Decide(ctx Context) model.Action
}

// Func adapts a plain observation-to-action function.
type Func struct {
	Label string
	Fn    func(obs model.Observation) model.Action
}

func (f Func) Name() string {
	if f.Label == "" {
		return "func"
	}
	return f.Label
}

func (f Func) Decide(ctx Context) model.Action { return f.Fn(ctx.Observation) }
