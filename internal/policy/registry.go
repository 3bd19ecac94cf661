package policy

import (
	"errors"
	"fmt"
	"strings"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/model"
)

// Spec names a policy and its parameters, as found in config files and
// API requests.
type Spec struct {
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params" json:"params,omitempty"`
}

// Deps are the collaborators some policies need.
type Deps struct {
	Dataset *model.Dataset
	// LoadCheckpoint resolves a checkpoint reference (file path or stored
	// name) for the qlearn policy. Defaults to agent.LoadFile.
	LoadCheckpoint func(ref string) (*agent.LinearQ, error)
}

// Build constructs a fresh policy instance. Stateful policies (random,
// momentum) must not be shared between concurrent rollouts; call Build once
// per rollout.
func Build(spec Spec, deps Deps) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Name)) {
	case "hold":
		return Hold{}, nil
	case "constant":
		raw, err := strParam(spec.Params, "action", "")
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, errors.New("constant policy requires params.action")
		}
		a, err := model.ParseAction(raw)
		if err != nil {
			return nil, err
		}
		return Constant{Action: a}, nil
	case "random":
		seed, err := numParam(spec.Params, "seed", 42)
		if err != nil {
			return nil, err
		}
		return NewRandom(int64(seed)), nil
	case "momentum":
		raw, err := strParam(spec.Params, "fuel", string(model.FuelULSP))
		if err != nil {
			return nil, err
		}
		fuel, err := model.ParseFuel(raw)
		if err != nil {
			return nil, err
		}
		return &Momentum{Fuel: fuel}, nil
	case "oracle":
		if deps.Dataset == nil {
			return nil, errors.New("oracle policy requires a dataset")
		}
		minMove, err := numParam(spec.Params, "min_move", 0)
		if err != nil {
			return nil, err
		}
		return NewOracle(deps.Dataset, OracleParams{MinMove: minMove})
	case "qlearn":
		ref, err := strParam(spec.Params, "checkpoint", "")
		if err != nil {
			return nil, err
		}
		if ref == "" {
			return nil, errors.New("qlearn policy requires params.checkpoint")
		}
		load := deps.LoadCheckpoint
		if load == nil {
			load = agent.LoadFile
		}
		q, err := load(ref)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint %q: %w", ref, err)
		}
		return Greedy(q), nil
	case "":
		return nil, errors.New("policy name is required")
	default:
		return nil, fmt.Errorf("unsupported policy: %q", spec.Name)
	}
}

// Greedy exposes a learner's greedy action selection as a Policy.
func Greedy(l agent.Learner) Policy {
	return Func{Label: "qlearn", Fn: l.Greedy}
}

// ParamInfo describes a policy parameter.
type ParamInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int", "string"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Info describes a built-in policy.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters"`
}

// Catalog lists the policies Build understands.
func Catalog() []Info {
	return []Info{
		{
			Name:        "hold",
			Description: "Never trades. Scores 0 every episode, which counts as a loss.",
			Parameters:  []ParamInfo{},
		},
		{
			Name:        "constant",
			Description: "Plays the same action every step.",
			Parameters: []ParamInfo{
				{Name: "action", Type: "string", Description: "One of HOLD, BUY_ULSP, SELL_ULSP, BUY_ULSD, SELL_ULSD"},
			},
		},
		{
			Name:        "random",
			Description: "Uniformly random actions from a seeded source.",
			Parameters: []ParamInfo{
				{Name: "seed", Type: "int", Description: "Random seed", Default: 42},
			},
		},
		{
			Name:        "momentum",
			Description: "Buys after a price rise and sells after a fall of the chosen fuel.",
			Parameters: []ParamInfo{
				{Name: "fuel", Type: "string", Description: "ULSP or ULSD", Default: "ULSP"},
			},
		},
		{
			Name:        "oracle",
			Description: "Perfect foresight. Picks the best one-step trade with knowledge of the next price.",
			Parameters: []ParamInfo{
				{Name: "min_move", Type: "float", Description: "Smallest price move (pence/litre) worth trading", Default: 0.0},
			},
		},
		{
			Name:        "qlearn",
			Description: "Greedy policy of a trained linear Q-learning agent.",
			Parameters: []ParamInfo{
				{Name: "checkpoint", Type: "string", Description: "Checkpoint file path or stored checkpoint name"},
			},
		},
	}
}

// numParam reads a numeric param. Missing or null keys yield def; any
// other non-number is an error.
func numParam(m map[string]any, key string, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("params.%s must be a number, got %T %v", key, v, v)
}

// strParam reads a string param. Numbers are accepted and formatted so an
// action can be given by index.
func strParam(m map[string]any, key string, def string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return def, nil
		}
		return x, nil
	case float64, int, int64:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("params.%s must be a string, got %T %v", key, v, v)
}
