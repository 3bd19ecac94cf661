package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"fuel-rl/internal/logger"
	"fuel-rl/internal/policy"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Session SessionConfig `yaml:"session"`

	// Optional: load the policy from a separate YAML (e.g. configs/policies/*.yaml).
	// Fields set in Policy override the ones from PolicyFile.
	PolicyFile string       `yaml:"policy_file"`
	Policy     PolicyConfig `yaml:"policy"`

	Training   TrainingConfig   `yaml:"training"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Store      StoreConfig      `yaml:"store"`
	Log        logger.Config    `yaml:"log"`
	API        APIConfig        `yaml:"api"`
}

type DataConfig struct {
	Path string `yaml:"path" default:"data/fuel_prices.csv"`
	// URL is downloaded instead of reading Path when set.
	URL string `yaml:"url" validate:"omitempty,url"`
	// Limit keeps only the first Limit rows when > 0.
	Limit int `yaml:"limit" validate:"gte=0"`
}

type SessionConfig struct {
	Episodes int `yaml:"episodes" default:"10" validate:"gte=1"`
	MaxSteps int `yaml:"max_steps" default:"1000" validate:"gte=0"`
	// Ledger is an optional CSV path for per-step rows.
	Ledger string `yaml:"ledger"`
}

type PolicyConfig struct {
	Name   string         `yaml:"name" default:"hold"`
	Params map[string]any `yaml:"params"`
}

func (p PolicyConfig) Spec() policy.Spec {
	return policy.Spec{Name: p.Name, Params: p.Params}
}

type TrainingConfig struct {
	TotalTimesteps      int     `yaml:"total_timesteps" default:"10000" validate:"gte=1"`
	LearningRate        float64 `yaml:"learning_rate" default:"0.01" validate:"gt=0,lte=1"`
	Gamma               float64 `yaml:"gamma" default:"0.99" validate:"gte=0,lte=1"`
	EpsilonStart        float64 `yaml:"epsilon_start" default:"1.0" validate:"gte=0,lte=1"`
	EpsilonEnd          float64 `yaml:"epsilon_end" default:"0.05" validate:"gte=0,lte=1"`
	ExplorationFraction float64 `yaml:"exploration_fraction" default:"0.1" validate:"gte=0,lte=1"`
	MaxEpisodeSteps     int     `yaml:"max_episode_steps" validate:"gte=0"`
	Seed                int64   `yaml:"seed" default:"42"`
}

type CheckpointConfig struct {
	Path string `yaml:"path" default:"models/fuel_price_q.json"`
	// Name stores the checkpoint in the session store as well.
	Name string `yaml:"name"`
}

type StoreConfig struct {
	// Path of the sqlite file; empty disables persistence.
	Path string `yaml:"path" default:"fuelrl.db"`
}

type APIConfig struct {
	Port           string   `yaml:"port" default:"8080" validate:"numeric"`
	AllowedOrigins []string `yaml:"allowed_origins" default:"[\"*\"]"`
	StaticDir      string   `yaml:"static_dir" default:"web"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Defaults are applied first so explicit zero values in the file stick.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.PolicyFile != "" {
		policyPath := c.PolicyFile
		if !filepath.IsAbs(policyPath) {
			// Relative to the config file first, then to the working directory.
			cand := filepath.Join(filepath.Dir(path), policyPath)
			if _, err := os.Stat(cand); err == nil {
				policyPath = cand
			}
		}
		loaded, err := loadPolicyFile(policyPath)
		if err != nil {
			return nil, err
		}
		var explicit struct {
			Policy PolicyConfig `yaml:"policy"`
		}
		if err := yaml.Unmarshal(raw, &explicit); err != nil {
			return nil, err
		}
		c.Policy = MergePolicy(loaded, explicit.Policy)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	if c.Data.Path == "" && c.Data.URL == "" {
		return errors.New("data.path or data.url is required")
	}
	if c.Policy.Name == "" {
		return errors.New("policy.name is required")
	}
	if !knownPolicy(c.Policy.Name) {
		return fmt.Errorf("policy.name: unsupported policy %q", c.Policy.Name)
	}
	if c.Training.EpsilonEnd > c.Training.EpsilonStart {
		return errors.New("training.epsilon_end must not exceed training.epsilon_start")
	}
	return nil
}

func knownPolicy(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range policy.Catalog() {
		if info.Name == name {
			return true
		}
	}
	return false
}

type policyFileWrapper struct {
	Policy PolicyConfig `yaml:"policy"`
}

func loadPolicyFile(path string) (PolicyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PolicyConfig{}, err
	}
	var w policyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return PolicyConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return w.Policy, nil
}

// MergePolicy overlays override onto base: a non-empty name replaces the
// base name and override params replace base params key by key.
func MergePolicy(base, override PolicyConfig) PolicyConfig {
	out := PolicyConfig{Name: base.Name, Params: map[string]any{}}
	if override.Name != "" {
		out.Name = override.Name
	}
	for k, v := range base.Params {
		out.Params[k] = v
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}

// describe turns validator errors into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is Config.session.episodes; drop the root.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
