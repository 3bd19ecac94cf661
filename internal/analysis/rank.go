package analysis

import (
	"sort"

	"fuel-rl/internal/driver"
)

type Ranked struct {
	Name          string  `json:"name"`
	Policy        string  `json:"policy"`
	AverageReward float64 `json:"average_reward"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	// OracleShare is AverageReward as a fraction of the oracle reward;
	// zero when the dataset offers no reward.
	OracleShare float64 `json:"oracle_share"`
}

// RankByAverageReward sorts comparison results best first. Ties keep the
// input order.
func RankByAverageReward(results []driver.Comparison, oracleReward float64) []Ranked {
	out := make([]Ranked, 0, len(results))
	for _, c := range results {
		if c.Summary == nil {
			continue
		}
		r := Ranked{
			Name:          c.Name,
			Policy:        c.Summary.Policy,
			AverageReward: c.Summary.AverageReward,
			Wins:          c.Summary.Wins,
			Losses:        c.Summary.Losses,
		}
		if oracleReward > 0 {
			r.OracleShare = r.AverageReward / oracleReward
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageReward > out[j].AverageReward
	})
	return out
}
