package learning

import (
	"fmt"
	"math"

	"github.com/JaimeStill/docsort/internal/scoring"
	"github.com/JaimeStill/docsort/pkg/envvar"
)

// Config holds the heuristic weight rule factors and the threshold
// optimizer parameters.
type Config struct {
	Reinforce     float64 `toml:"reinforce_factor"`
	Penalty       float64 `toml:"penalty_factor"`
	Reward        float64 `toml:"reward_factor"`
	WeightFloor   float64 `toml:"weight_floor"`
	WeightCeiling float64 `toml:"weight_ceiling"`
	Interval      int     `toml:"threshold_interval"`
	Percentile    float64 `toml:"threshold_percentile"`
	MinSamples    int     `toml:"min_samples"`
	MinFeedback   int     `toml:"min_feedback"`
	Margin        float64 `toml:"separation_margin"`
	MinChange     float64 `toml:"min_change"`
	Window        int     `toml:"window"`
}

// Env maps Config fields to environment variable names.
type Env struct {
	Reinforce     string
	Penalty       string
	Reward        string
	WeightFloor   string
	WeightCeiling string
	Interval      string
	Percentile    string
	MinSamples    string
	MinFeedback   string
	Margin        string
	MinChange     string
	Window        string
}

func DefaultConfig() Config {
	c := Config{}
	c.loadDefaults()
	return c
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Reinforce != 0 {
		c.Reinforce = overlay.Reinforce
	}
	if overlay.Penalty != 0 {
		c.Penalty = overlay.Penalty
	}
	if overlay.Reward != 0 {
		c.Reward = overlay.Reward
	}
	if overlay.WeightFloor != 0 {
		c.WeightFloor = overlay.WeightFloor
	}
	if overlay.WeightCeiling != 0 {
		c.WeightCeiling = overlay.WeightCeiling
	}
	if overlay.Interval != 0 {
		c.Interval = overlay.Interval
	}
	if overlay.Percentile != 0 {
		c.Percentile = overlay.Percentile
	}
	if overlay.MinSamples != 0 {
		c.MinSamples = overlay.MinSamples
	}
	if overlay.MinFeedback != 0 {
		c.MinFeedback = overlay.MinFeedback
	}
	if overlay.Margin != 0 {
		c.Margin = overlay.Margin
	}
	if overlay.MinChange != 0 {
		c.MinChange = overlay.MinChange
	}
	if overlay.Window != 0 {
		c.Window = overlay.Window
	}
}

// Rule returns the weight update rule described by c.
func (c Config) Rule() HeuristicRule {
	return HeuristicRule{
		Reinforce: c.Reinforce,
		Penalty:   c.Penalty,
		Reward:    c.Reward,
		Floor:     c.WeightFloor,
		Ceiling:   c.WeightCeiling,
	}
}

// Validate checks c without applying defaults. Callers that override
// fields after Finalize use it before running the optimizer.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", scoring.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.Reinforce == 0 {
		c.Reinforce = 0.05
	}
	if c.Penalty == 0 {
		c.Penalty = -0.10
	}
	if c.Reward == 0 {
		c.Reward = 0.10
	}
	if c.WeightFloor == 0 {
		c.WeightFloor = 0.1
	}
	if c.Interval == 0 {
		c.Interval = 50
	}
	if c.Percentile == 0 {
		c.Percentile = 25
	}
	if c.MinSamples == 0 {
		c.MinSamples = 5
	}
	if c.MinFeedback == 0 {
		c.MinFeedback = 10
	}
	if c.Margin == 0 {
		c.Margin = 0.1
	}
	if c.MinChange == 0 {
		c.MinChange = 0.1
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.Float(&c.Reinforce, env.Reinforce)
	envvar.Float(&c.Penalty, env.Penalty)
	envvar.Float(&c.Reward, env.Reward)
	envvar.Float(&c.WeightFloor, env.WeightFloor)
	envvar.Float(&c.WeightCeiling, env.WeightCeiling)
	envvar.Int(&c.Interval, env.Interval)
	envvar.Float(&c.Percentile, env.Percentile)
	envvar.Int(&c.MinSamples, env.MinSamples)
	envvar.Int(&c.MinFeedback, env.MinFeedback)
	envvar.Float(&c.Margin, env.Margin)
	envvar.Float(&c.MinChange, env.MinChange)
	envvar.Int(&c.Window, env.Window)
}

func (c *Config) validate() error {
	for name, v := range map[string]float64{
		"reinforce_factor":     c.Reinforce,
		"penalty_factor":       c.Penalty,
		"reward_factor":        c.Reward,
		"weight_floor":         c.WeightFloor,
		"weight_ceiling":       c.WeightCeiling,
		"threshold_percentile": c.Percentile,
		"separation_margin":    c.Margin,
		"min_change":           c.MinChange,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}

	if c.Reinforce < 0 || c.Reinforce > 1 {
		return fmt.Errorf("reinforce_factor must be between 0 and 1: got %v", c.Reinforce)
	}
	if c.Reward < 0 || c.Reward > 1 {
		return fmt.Errorf("reward_factor must be between 0 and 1: got %v", c.Reward)
	}
	if c.Penalty < -1 || c.Penalty > 0 {
		return fmt.Errorf("penalty_factor must be between -1 and 0: got %v", c.Penalty)
	}
	if c.WeightFloor < 0 {
		return fmt.Errorf("weight_floor must be non-negative: got %v", c.WeightFloor)
	}
	if c.WeightCeiling < 0 || (c.WeightCeiling > 0 && c.WeightCeiling < c.WeightFloor) {
		return fmt.Errorf("weight_ceiling must be 0 or at least weight_floor: got %v", c.WeightCeiling)
	}
	if c.Interval < 1 {
		return fmt.Errorf("threshold_interval must be positive: got %d", c.Interval)
	}
	if c.Percentile <= 0 || c.Percentile > 100 {
		return fmt.Errorf("threshold_percentile must be in (0, 100]: got %v", c.Percentile)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("min_samples must be positive: got %d", c.MinSamples)
	}
	if c.MinFeedback < 0 || c.Window < 0 {
		return fmt.Errorf("min_feedback and window must be non-negative")
	}
	if c.Margin < 0 || c.MinChange < 0 {
		return fmt.Errorf("separation_margin and min_change must be non-negative")
	}
	return nil
}
