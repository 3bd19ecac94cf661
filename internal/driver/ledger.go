package driver

import (
	"time"

	"fuel-rl/internal/model"
)

// LedgerRow is one environment step of a recorded episode.
type LedgerRow struct {
	Episode int
	Step    int

	// Date of the row the step moved to; zero when the environment does
	// not expose dated records.
	Date time.Time

	Action model.Action

	// Prices observed after the step.
	PriceULSP float64
	PriceULSD float64

	Reward     float64
	CumReward  float64
	Terminated bool
}

// EpisodeResult is the outcome of one rollout.
type EpisodeResult struct {
	Episode    int
	Reward     float64
	Steps      int
	Terminated bool
	Ledger     []LedgerRow
}

// Won reports a strictly positive episode reward. Zero is a loss.
func (r EpisodeResult) Won() bool { return r.Reward > 0 }

// Summary aggregates the episodes of a session.
type Summary struct {
	Policy        string
	Episodes      []EpisodeResult
	AverageReward float64
	Wins          int
	Losses        int
}

// Rewards returns the per-episode rewards in rollout order.
func (s *Summary) Rewards() []float64 {
	out := make([]float64, len(s.Episodes))
	for i, ep := range s.Episodes {
		out[i] = ep.Reward
	}
	return out
}

// Ledger concatenates the recorded rows of every episode.
func (s *Summary) Ledger() []LedgerRow {
	var out []LedgerRow
	for _, ep := range s.Episodes {
		out = append(out, ep.Ledger...)
	}
	return out
}

func summarize(name string, episodes []EpisodeResult) *Summary {
	s := &Summary{Policy: name, Episodes: episodes}
	total := 0.0
	for _, ep := range episodes {
		total += ep.Reward
		if ep.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	s.AverageReward = total / float64(len(episodes))
	return s
}
