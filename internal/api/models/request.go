package models

// PolicyConfig names a policy and its parameters.
type PolicyConfig struct {
	Name   string                 `json:"name" validate:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// SessionRequest represents the request body for running an evaluation session
type SessionRequest struct {
	Policy   PolicyConfig   `json:"policy"`
	Episodes *int           `json:"episodes" default:"10" validate:"lte=10000"`
	MaxSteps *int           `json:"max_steps" default:"1000" validate:"gte=0"`
	Options  SessionOptions `json:"options,omitempty"`
}

// SessionOptions contains optional session parameters
type SessionOptions struct {
	LimitRows     int  `json:"limit_rows,omitempty" validate:"gte=0"` // 0 = all
	IncludeLedger bool `json:"include_ledger,omitempty"`
	// DryRun skips persisting the session.
	DryRun bool `json:"dry_run,omitempty"`
}

// CompareRequest represents a request to compare several policies on the same data
type CompareRequest struct {
	Episodes   *int        `json:"episodes" default:"10" validate:"lte=10000"`
	MaxSteps   *int        `json:"max_steps" default:"1000" validate:"gte=0"`
	LimitRows  int         `json:"limit_rows,omitempty" validate:"gte=0"`
	Variations []Variation `json:"variations" validate:"required,min=1,max=32,dive"`
}

// Variation defines one entrant of a comparison
type Variation struct {
	Name   string       `json:"name"`
	Policy PolicyConfig `json:"policy"`
}

// TrainRequest represents a request to train and store a linear Q agent
type TrainRequest struct {
	CheckpointName      string   `json:"checkpoint_name" validate:"required,max=128"`
	TotalTimesteps      int      `json:"total_timesteps" default:"10000" validate:"gte=1,lte=1000000"`
	LearningRate        float64  `json:"learning_rate" default:"0.01" validate:"gt=0,lte=1"`
	Gamma               *float64 `json:"gamma" default:"0.99" validate:"gte=0,lte=1"`
	EpsilonStart        *float64 `json:"epsilon_start" default:"1.0" validate:"gte=0,lte=1"`
	EpsilonEnd          *float64 `json:"epsilon_end" default:"0.05" validate:"gte=0,lte=1"`
	ExplorationFraction *float64 `json:"exploration_fraction" default:"0.1" validate:"gte=0,lte=1"`
	MaxEpisodeSteps     int      `json:"max_episode_steps,omitempty" validate:"gte=0"`
	Seed                *int64   `json:"seed" default:"42"`
	LimitRows           int      `json:"limit_rows,omitempty" validate:"gte=0"`
}
