package driver

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"
	"fuel-rl/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// dataset builds weekly rows with the given ULSP prices and ULSD = ULSP + 10.
func dataset(ulsp ...float64) *model.Dataset {
	recs := make([]model.FuelRecord, len(ulsp))
	for i, p := range ulsp {
		recs[i] = model.FuelRecord{
			Date:          monday.AddDate(0, 0, 7*i),
			PumpPriceULSP: p,
			PumpPriceULSD: p + 10,
			DutyRateULSP:  52.95,
			DutyRateULSD:  52.95,
			VATRateULSP:   20,
			VATRateULSD:   20,
		}
	}
	return model.MustDataset(recs)
}

func newEnv(t *testing.T, ds *model.Dataset) *environment.FuelPriceEnv {
	t.Helper()
	env, err := environment.NewFuelPriceEnv(ds)
	require.NoError(t, err)
	return env
}

type fakeRecorder struct {
	episodes int
	steps    int
	updates  int
}

func (f *fakeRecorder) RecordEpisode(_ string, _ float64, steps int) {
	f.episodes++
	f.steps += steps
}

func (f *fakeRecorder) RecordTrainingUpdates(n int) { f.updates += n }

// countingEnv wraps an environment and counts resets.
type countingEnv struct {
	environment.Env
	resets int
}

func (c *countingEnv) Reset() model.Observation {
	c.resets++
	return c.Env.Reset()
}

func TestRunEpisodeScenario(t *testing.T) {
	env := newEnv(t, dataset(100, 105, 102))

	reward, err := RunEpisode(env, policy.Constant{Action: model.ActionBuyULSP}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2.0, reward)
	assert.True(t, env.Terminated())

	reward, err = RunEpisode(env, policy.Constant{Action: model.ActionSellULSP}, 1000)
	require.NoError(t, err)
	assert.Equal(t, -2.0, reward)
}

func TestHoldSessionLosesEveryEpisode(t *testing.T) {
	env := newEnv(t, dataset(100, 105, 102, 110, 90))

	s, err := RunSession(env, policy.Hold{}, 7, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.AverageReward)
	assert.Equal(t, 0, s.Wins)
	assert.Equal(t, 7, s.Losses)
	assert.Len(t, s.Episodes, 7)
	assert.Equal(t, "hold", s.Policy)
}

func TestSessionAverageIsMean(t *testing.T) {
	env := newEnv(t, dataset(100, 105, 102, 110, 90, 95, 97, 96))

	s, err := RunSession(env, policy.NewRandom(11), 25, 1000)
	require.NoError(t, err)

	sum := 0.0
	wins := 0
	for _, r := range s.Rewards() {
		sum += r
		if r > 0 {
			wins++
		}
	}
	assert.InDelta(t, sum/25, s.AverageReward, 1e-12)
	assert.Equal(t, wins, s.Wins)
	assert.Equal(t, 25, s.Wins+s.Losses)
}

func TestEmptySessionRunsNothing(t *testing.T) {
	env := &countingEnv{Env: newEnv(t, dataset(100, 101))}

	for _, n := range []int{0, -3} {
		_, err := RunSession(env, policy.Hold{}, n, 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptySession))
		var se *SessionError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, n, se.Episodes)
	}
	assert.Equal(t, 0, env.resets)
}

func TestStepErrorsPropagate(t *testing.T) {
	env := newEnv(t, dataset(100, 101, 102))

	_, err := RunSession(env, policy.Constant{Action: model.Action(9)}, 3, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, environment.ErrInvalidAction))
	var se *environment.StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Step)
	assert.Contains(t, err.Error(), "episode 0 step 0")
	assert.Equal(t, 0, env.Cursor())
}

func TestMaxStepsCutsEpisode(t *testing.T) {
	env := newEnv(t, dataset(100, 101, 102, 103, 104, 105))
	e := New()

	res, err := e.RunEpisode(env, policy.Constant{Action: model.ActionBuyULSP}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, 3.0, res.Reward)
	assert.False(t, res.Terminated)

	res, err = e.RunEpisode(env, policy.Constant{Action: model.ActionBuyULSP}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Steps)
	assert.Equal(t, 0.0, res.Reward)

	_, err = e.RunEpisode(env, policy.Hold{}, -1)
	assert.True(t, errors.Is(err, ErrInvalidStepBudget))
	_, err = e.RunSession(env, policy.Hold{}, 2, -1)
	assert.True(t, errors.Is(err, ErrInvalidStepBudget))
}

func TestTwoRowBoundary(t *testing.T) {
	env := newEnv(t, dataset(100, 104))
	res, err := New().RunEpisode(env, policy.Constant{Action: model.ActionBuyULSD}, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 4.0, res.Reward)
	assert.True(t, res.Terminated)
}

func TestRecorderAndNilArguments(t *testing.T) {
	rec := &fakeRecorder{}
	e := New(WithRecorder(rec))
	env := newEnv(t, dataset(100, 101, 102, 103))

	_, err := e.RunSession(env, policy.Hold{}, 4, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.episodes)
	assert.Equal(t, 12, rec.steps)

	_, err = e.RunEpisode(nil, policy.Hold{}, 1)
	assert.Error(t, err)
	_, err = e.RunEpisode(env, nil, 1)
	assert.Error(t, err)
}

func TestSessionHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().RunSessionContext(ctx, newEnv(t, dataset(100, 101)), policy.Hold{}, 3, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLedger(t *testing.T) {
	env := newEnv(t, dataset(100, 105, 102))
	s, err := New(WithLedger(true)).RunSession(env, policy.Constant{Action: model.ActionBuyULSP}, 2, 100)
	require.NoError(t, err)

	rows := s.Ledger()
	require.Len(t, rows, 4)
	assert.Equal(t, LedgerRow{
		Episode:    0,
		Step:       1,
		Date:       monday.AddDate(0, 0, 14),
		Action:     model.ActionBuyULSP,
		PriceULSP:  102,
		PriceULSD:  112,
		Reward:     -3,
		CumReward:  2,
		Terminated: true,
	}, rows[1])
	assert.Equal(t, 1, rows[2].Episode)

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "episode,step,date,action,price_ulsp,price_ulsd,reward,cum_reward,terminated", lines[0])
	assert.Equal(t, "0,0,2024-01-08,BUY_ULSP,105.000000,115.000000,5.000000,5.000000,false", lines[1])
}

func TestLedgerOffByDefault(t *testing.T) {
	s, err := RunSession(newEnv(t, dataset(100, 105, 102)), policy.Hold{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, s.Ledger())
}

func TestSchedule(t *testing.T) {
	s := Schedule{TotalTimesteps: 100, EpsilonStart: 1, EpsilonEnd: 0.1, ExplorationFraction: 0.5}
	require.NoError(t, s.Validate())
	assert.Equal(t, 1.0, s.Epsilon(0))
	assert.InDelta(t, 0.55, s.Epsilon(25), 1e-12)
	assert.Equal(t, 0.1, s.Epsilon(50))
	assert.Equal(t, 0.1, s.Epsilon(99))

	s.ExplorationFraction = 0
	assert.Equal(t, 0.1, s.Epsilon(0))

	assert.Error(t, Schedule{}.Validate())
	assert.Error(t, Schedule{TotalTimesteps: 10, EpsilonStart: 2}.Validate())
	assert.Error(t, Schedule{TotalTimesteps: 10, ExplorationFraction: -1}.Validate())
}

func rising(n int) *model.Dataset {
	p := make([]float64, n)
	for i := range p {
		p[i] = 100 + float64(i)
	}
	recs := make([]model.FuelRecord, n)
	for i := range recs {
		recs[i] = model.FuelRecord{
			PumpPriceULSP: p[i],
			PumpPriceULSD: 110 + 2*float64(i),
			DutyRateULSP:  52.95,
			DutyRateULSD:  52.95,
			VATRateULSP:   20,
			VATRateULSD:   20,
		}
	}
	return model.MustDataset(recs)
}

func TestLearnFindsBestFuel(t *testing.T) {
	ds := rising(20)
	env := newEnv(t, ds)
	q, err := agent.NewLinearQ(agent.NormalizerFromDataset(ds), agent.Params{LearningRate: 0.05, Gamma: 0})
	require.NoError(t, err)

	rec := &fakeRecorder{}
	sched := Schedule{TotalTimesteps: 4000, EpsilonStart: 1, EpsilonEnd: 0.05, ExplorationFraction: 0.5}
	stats, err := New(WithRecorder(rec)).Learn(context.Background(), env, q, sched, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, 4000, stats.Timesteps)
	assert.Equal(t, 4000/19, stats.Episodes)
	assert.Greater(t, stats.MeanEpisodeReward, 0.0)
	assert.Equal(t, 0.05, stats.FinalEpsilon)
	assert.Equal(t, 4000, q.Updates())
	assert.Equal(t, 4000, rec.updates)

	for i := 0; i+1 < ds.Len(); i++ {
		assert.Equal(t, model.ActionBuyULSD, q.Greedy(ds.Observation(i)), "row %d", i)
	}

	s, err := RunSession(env, policy.Greedy(q), 3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 38.0, s.AverageReward)
	assert.Equal(t, 3, s.Wins)
}

func TestLearnCutsEpisodes(t *testing.T) {
	env := newEnv(t, rising(20))
	q, err := agent.NewLinearQ(agent.IdentityNormalizer(), agent.Params{LearningRate: 0.01, Gamma: 0.9})
	require.NoError(t, err)

	stats, err := New().Learn(context.Background(), env, q,
		Schedule{TotalTimesteps: 100, EpsilonStart: 1, EpsilonEnd: 1, MaxEpisodeSteps: 5},
		rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Episodes)

	_, err = New().Learn(context.Background(), env, q, Schedule{TotalTimesteps: 10}, nil)
	assert.Error(t, err)
}
