package models

import (
	"time"

	"fuel-rl/internal/analysis"
	"fuel-rl/internal/model"
)

// SessionResponse represents the result of an evaluation session
type SessionResponse struct {
	ID            string      `json:"id,omitempty"`
	Policy        string      `json:"policy"`
	Episodes      int         `json:"episodes"`
	MaxSteps      int         `json:"max_steps"`
	AverageReward float64     `json:"average_reward"`
	Wins          int         `json:"wins"`
	Losses        int         `json:"losses"`
	Rewards       []float64   `json:"rewards"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
	Ledger        []LedgerRow `json:"ledger,omitempty"`
}

// LedgerRow represents one step in the session ledger
type LedgerRow struct {
	Episode    int     `json:"episode"`
	Step       int     `json:"step"`
	Date       string  `json:"date,omitempty"`
	Action     string  `json:"action"`
	PriceULSP  float64 `json:"price_ulsp"`
	PriceULSD  float64 `json:"price_ulsd"`
	Reward     float64 `json:"reward"`
	CumReward  float64 `json:"cum_reward"`
	Terminated bool    `json:"terminated"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison   []SessionResponse `json:"comparison"`
	Ranking      []analysis.Ranked `json:"ranking"`
	OracleReward float64           `json:"oracle_reward"`
}

// TrainResponse summarizes a training run and a greedy evaluation episode
type TrainResponse struct {
	CheckpointName    string          `json:"checkpoint_name"`
	Timesteps         int             `json:"timesteps"`
	Episodes          int             `json:"episodes"`
	MeanEpisodeReward float64         `json:"mean_episode_reward"`
	FinalEpsilon      float64         `json:"final_epsilon"`
	Evaluation        SessionResponse `json:"evaluation"`
}

// DatasetResponse describes the loaded dataset
type DatasetResponse struct {
	Source    string             `json:"source"`
	Potential analysis.Potential `json:"potential"`
	Head      []model.FuelRecord `json:"head"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
