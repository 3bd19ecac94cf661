package driver

import (
	"context"
	"errors"
	"fmt"

	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"
	"fuel-rl/internal/policy"

	"github.com/rs/zerolog"
)

// Recorder receives rollout and training counts. *metrics.Recorder
// satisfies it.
type Recorder interface {
	RecordEpisode(policy string, reward float64, steps int)
	RecordTrainingUpdates(n int)
}

type Engine struct {
	log    zerolog.Logger
	rec    Recorder
	ledger bool
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithRecorder publishes episode metrics. A nil recorder is ignored.
func WithRecorder(r Recorder) Option { return func(e *Engine) { e.rec = r } }

// WithLedger keeps a per-step ledger on every EpisodeResult.
func WithLedger(on bool) Option { return func(e *Engine) { e.ledger = on } }

func New(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// dated is implemented by environments that can report the row under the
// cursor; it is only used to fill ledger dates.
type dated interface {
	CurrentRecord() model.FuelRecord
}

// RunEpisode resets env and steps it with actions from pol until the
// episode terminates or maxSteps steps were taken. Step errors are returned
// wrapped with the step index and still match the environment sentinels.
func (e *Engine) RunEpisode(env environment.Env, pol policy.Policy, maxSteps int) (*EpisodeResult, error) {
	if env == nil {
		return nil, errors.New("environment is nil")
	}
	if pol == nil {
		return nil, errors.New("policy is nil")
	}
	if maxSteps < 0 {
		return nil, &BudgetError{MaxSteps: maxSteps}
	}
	return e.runEpisode(env, pol, 0, maxSteps)
}

func (e *Engine) runEpisode(env environment.Env, pol policy.Policy, episode, maxSteps int) (*EpisodeResult, error) {
	res := &EpisodeResult{Episode: episode}
	obs := env.Reset()
	d, hasDate := env.(dated)

	for step := 0; step < maxSteps; step++ {
		action := pol.Decide(policy.Context{Step: step, Observation: obs})
		out, err := env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("episode %d step %d: %w", episode, step, err)
		}
		res.Reward += out.Reward
		res.Steps++

		if e.ledger {
			row := LedgerRow{
				Episode:    episode,
				Step:       step,
				Action:     action,
				PriceULSP:  out.Observation.Price(model.FuelULSP),
				PriceULSD:  out.Observation.Price(model.FuelULSD),
				Reward:     out.Reward,
				CumReward:  res.Reward,
				Terminated: out.Terminated,
			}
			if hasDate {
				row.Date = d.CurrentRecord().Date
			}
			res.Ledger = append(res.Ledger, row)
		}

		obs = out.Observation
		if out.Terminated || out.Truncated {
			res.Terminated = out.Terminated
			break
		}
	}

	if e.rec != nil {
		e.rec.RecordEpisode(pol.Name(), res.Reward, res.Steps)
	}
	e.log.Debug().
		Str("policy", pol.Name()).
		Int("episode", episode).
		Int("steps", res.Steps).
		Float64("reward", res.Reward).
		Bool("terminated", res.Terminated).
		Msg("episode complete")
	return res, nil
}

// RunSession plays episodes back-to-back on env and aggregates them.
func (e *Engine) RunSession(env environment.Env, pol policy.Policy, episodes, maxSteps int) (*Summary, error) {
	return e.RunSessionContext(context.Background(), env, pol, episodes, maxSteps)
}

// RunSessionContext is RunSession with cancellation checked between episodes.
func (e *Engine) RunSessionContext(ctx context.Context, env environment.Env, pol policy.Policy, episodes, maxSteps int) (*Summary, error) {
	if episodes < 1 {
		return nil, &SessionError{Episodes: episodes}
	}
	if maxSteps < 0 {
		return nil, &BudgetError{MaxSteps: maxSteps}
	}
	if env == nil {
		return nil, errors.New("environment is nil")
	}
	if pol == nil {
		return nil, errors.New("policy is nil")
	}

	results := make([]EpisodeResult, 0, episodes)
	for ep := 0; ep < episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := e.runEpisode(env, pol, ep, maxSteps)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	s := summarize(pol.Name(), results)
	e.log.Info().
		Str("policy", s.Policy).
		Int("episodes", episodes).
		Float64("average_reward", s.AverageReward).
		Int("wins", s.Wins).
		Int("losses", s.Losses).
		Msg("session complete")
	return s, nil
}

// RunEpisode runs one episode with a default engine and returns its reward.
func RunEpisode(env environment.Env, pol policy.Policy, maxSteps int) (float64, error) {
	res, err := New().RunEpisode(env, pol, maxSteps)
	if err != nil {
		return 0, err
	}
	return res.Reward, nil
}

// RunSession runs a session with a default engine.
func RunSession(env environment.Env, pol policy.Policy, episodes, maxSteps int) (*Summary, error) {
	return New().RunSession(env, pol, episodes, maxSteps)
}
