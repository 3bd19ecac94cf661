package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/environment"
)

// Schedule controls a training run. Epsilon decays linearly from
// EpsilonStart to EpsilonEnd over the first ExplorationFraction of
// TotalTimesteps and stays at EpsilonEnd afterwards.
type Schedule struct {
	TotalTimesteps      int
	EpsilonStart        float64
	EpsilonEnd          float64
	ExplorationFraction float64
	// MaxEpisodeSteps cuts episodes short when > 0.
	MaxEpisodeSteps int
}

func (s Schedule) Validate() error {
	if s.TotalTimesteps < 1 {
		return fmt.Errorf("total_timesteps must be >= 1, got %d", s.TotalTimesteps)
	}
	for _, eps := range []float64{s.EpsilonStart, s.EpsilonEnd} {
		if eps < 0 || eps > 1 {
			return fmt.Errorf("epsilon must be in [0, 1], got %v", eps)
		}
	}
	if s.ExplorationFraction < 0 || s.ExplorationFraction > 1 {
		return fmt.Errorf("exploration_fraction must be in [0, 1], got %v", s.ExplorationFraction)
	}
	if s.MaxEpisodeSteps < 0 {
		return &BudgetError{MaxSteps: s.MaxEpisodeSteps}
	}
	return nil
}

// Epsilon is the exploration rate at timestep t.
func (s Schedule) Epsilon(t int) float64 {
	horizon := s.ExplorationFraction * float64(s.TotalTimesteps)
	if horizon <= 0 || float64(t) >= horizon {
		return s.EpsilonEnd
	}
	return s.EpsilonStart + (s.EpsilonEnd-s.EpsilonStart)*float64(t)/horizon
}

// TrainStats summarizes a training run.
type TrainStats struct {
	Timesteps         int
	Episodes          int
	MeanEpisodeReward float64
	FinalEpsilon      float64
}

// Learn trains learner on env for sched.TotalTimesteps transitions,
// resetting whenever an episode ends. Only completed episodes count
// towards MeanEpisodeReward.
func (e *Engine) Learn(ctx context.Context, env environment.Env, learner agent.Learner, sched Schedule, rng *rand.Rand) (*TrainStats, error) {
	if env == nil || learner == nil {
		return nil, errors.New("environment and learner are required")
	}
	if rng == nil {
		return nil, errors.New("rng is required")
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	stats := &TrainStats{}
	obs := env.Reset()
	epReward, epSteps, sum := 0.0, 0, 0.0

	for t := 0; t < sched.TotalTimesteps; t++ {
		if t%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		eps := sched.Epsilon(t)
		action := learner.Explore(obs, eps, rng)
		out, err := env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("timestep %d: %w", t, err)
		}
		if err := learner.Update(agent.Transition{
			Observation: obs,
			Action:      action,
			Reward:      out.Reward,
			Next:        out.Observation,
			Terminated:  out.Terminated,
		}); err != nil {
			return nil, fmt.Errorf("timestep %d update: %w", t, err)
		}
		stats.Timesteps++
		stats.FinalEpsilon = eps
		epReward += out.Reward
		epSteps++
		obs = out.Observation

		cut := sched.MaxEpisodeSteps > 0 && epSteps >= sched.MaxEpisodeSteps
		if out.Terminated || out.Truncated || cut {
			stats.Episodes++
			sum += epReward
			e.log.Debug().Int("episode", stats.Episodes).Float64("reward", epReward).Float64("epsilon", eps).Msg("training episode complete")
			obs = env.Reset()
			epReward, epSteps = 0, 0
		}
	}
	if stats.Episodes > 0 {
		stats.MeanEpisodeReward = sum / float64(stats.Episodes)
	}

	if e.rec != nil {
		e.rec.RecordTrainingUpdates(stats.Timesteps)
	}
	e.log.Info().
		Int("timesteps", stats.Timesteps).
		Int("episodes", stats.Episodes).
		Float64("mean_episode_reward", stats.MeanEpisodeReward).
		Msg("training complete")
	return stats, nil
}
