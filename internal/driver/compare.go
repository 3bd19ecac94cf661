package driver

import (
	"context"
	"fmt"
	"runtime"

	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"
	"fuel-rl/internal/policy"

	"golang.org/x/sync/errgroup"
)

// Variation is one policy entered into a comparison.
type Variation struct {
	Name   string      `json:"name"`
	Policy policy.Spec `json:"policy"`
}

type Comparison struct {
	Name    string
	Summary *Summary
}

// Compare runs one session per variation concurrently over the shared
// dataset. Each variation gets its own environment and policy instance.
// Results keep the order of variations; the first failure cancels the rest.
func (e *Engine) Compare(ctx context.Context, data *model.Dataset, deps policy.Deps, variations []Variation, episodes, maxSteps int) ([]Comparison, error) {
	if len(variations) == 0 {
		return nil, fmt.Errorf("no variations to compare")
	}
	if episodes < 1 {
		return nil, &SessionError{Episodes: episodes}
	}
	if maxSteps < 0 {
		return nil, &BudgetError{MaxSteps: maxSteps}
	}
	deps.Dataset = data

	out := make([]Comparison, len(variations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, v := range variations {
		i, v := i, v
		name := v.Name
		if name == "" {
			name = v.Policy.Name
		}
		g.Go(func() error {
			env, err := environment.NewFuelPriceEnv(data)
			if err != nil {
				return err
			}
			pol, err := policy.Build(v.Policy, deps)
			if err != nil {
				return fmt.Errorf("variation %q: %w", name, err)
			}
			s, err := e.RunSessionContext(gctx, env, pol, episodes, maxSteps)
			if err != nil {
				return fmt.Errorf("variation %q: %w", name, err)
			}
			out[i] = Comparison{Name: name, Summary: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
