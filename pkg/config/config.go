package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the root configuration.
type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"` // console or json
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Fitting FittingConfig `yaml:"fitting"`
}

// FittingConfig carries every tunable of the fitting engine. Thresholds and
// theoretical reference values are configuration on purpose: the boundary
// epsilon in particular is empirically chosen and meant to be validated
// against historical benchmark fits, not derived.
type FittingConfig struct {
	// MinDataPoints is the fail-fast input precondition.
	MinDataPoints int `yaml:"min_data_points" default:"100" validate:"gte=10"`

	// Workers bounds the trial pool; trials are embarrassingly parallel.
	Workers int `yaml:"workers" default:"8" validate:"gte=1"`

	// BoundaryTolerance is the relative epsilon for boundary-stuck and
	// critical-proximity detection: epsilon = tolerance * (hi - lo).
	BoundaryTolerance float64 `yaml:"boundary_tolerance" default:"0.001" validate:"gt=0,lt=0.1"`

	// Sornette reference values for theoretical-consistency scoring.
	TheoreticalBeta  float64 `yaml:"theoretical_beta" default:"0.33" validate:"gt=0"`
	TheoreticalOmega float64 `yaml:"theoretical_omega" default:"6.36" validate:"gt=0"`

	// Practical-usability horizon tiers for tc, on the normalized window.
	ActionableTc float64 `yaml:"actionable_tc" default:"1.2"`
	PracticalTc  float64 `yaml:"practical_tc" default:"1.5"`
	DistantTc    float64 `yaml:"distant_tc" default:"2.0"`

	// SelectionEpsilon is the tie-break window: scores closer than this are
	// considered equal and the smaller tc wins.
	SelectionEpsilon float64 `yaml:"selection_epsilon" default:"0.001" validate:"gt=0"`

	Quality   QualityConfig   `yaml:"quality"`
	Optimizer OptimizerConfig `yaml:"optimizer"`

	Conservative StrategyConfig `yaml:"conservative"`
	Extensive    StrategyConfig `yaml:"extensive"`
	Emergency    StrategyConfig `yaml:"emergency"`
}

// QualityConfig holds the composite-score weights and category thresholds.
type QualityConfig struct {
	StatisticalWeight float64 `yaml:"statistical_weight" default:"0.4" validate:"gte=0,lte=1"`
	TheoreticalWeight float64 `yaml:"theoretical_weight" default:"0.3" validate:"gte=0,lte=1"`
	PracticalWeight   float64 `yaml:"practical_weight" default:"0.2" validate:"gte=0,lte=1"`
	StabilityWeight   float64 `yaml:"stability_weight" default:"0.1" validate:"gte=0,lte=1"`

	HighThreshold       float64 `yaml:"high_threshold" default:"0.8"`
	AcceptableThreshold float64 `yaml:"acceptable_threshold" default:"0.6"`
	UsableThreshold     float64 `yaml:"usable_threshold" default:"0.4"`

	// MinRSquared is the low-quality diagnostic floor.
	MinRSquared float64 `yaml:"min_r_squared" default:"0.3" validate:"gte=0,lte=1"`

	// MinUsableRSquared is the statistical floor a candidate must clear to
	// be usable at all. The practical and stability terms hand out points
	// to any smooth trend fit, so the composite alone cannot separate a
	// bubble signature from drift; this floor can.
	MinUsableRSquared float64 `yaml:"min_usable_r_squared" default:"0.95" validate:"gte=0,lte=1"`
}

// OptimizerConfig tunes the bounded Levenberg-Marquardt loop.
type OptimizerConfig struct {
	MaxIterations int     `yaml:"max_iterations" default:"500" validate:"gte=1"`
	Tolerance     float64 `yaml:"tolerance" default:"1e-8" validate:"gt=0"`
	InitialDamp   float64 `yaml:"initial_damp" default:"0.001" validate:"gt=0"`
	MaxDamp       float64 `yaml:"max_damp" default:"1e10" validate:"gt=0"`
}

// StrategyConfig is one row of the strategy table: how many trials to run,
// from which parameter ranges, with which initialization method and per-trial
// wall-clock budget.
type StrategyConfig struct {
	Trials       int      `yaml:"trials" validate:"gte=1"`
	TrialTimeout Duration `yaml:"trial_timeout" validate:"gt=0"`

	// Method is grid, hybrid (half grid, half random) or random.
	Method string `yaml:"method" validate:"oneof=grid hybrid random"`

	TcMin    float64 `yaml:"tc_min"`
	TcMax    float64 `yaml:"tc_max"`
	BetaMin  float64 `yaml:"beta_min"`
	BetaMax  float64 `yaml:"beta_max"`
	OmegaMin float64 `yaml:"omega_min"`
	OmegaMax float64 `yaml:"omega_max"`
}

// Load reads and parses a YAML configuration file, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := finalize(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides selected keys with
// environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("FITTING_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse FITTING_WORKERS: %w", err)
		}
		c.Fitting.Workers = n
	}

	if err := finalize(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration: the strategy table from the
// validated historical-crash runs and all thresholds at their documented
// defaults.
func Default() *Config {
	var c Config
	if err := finalize(&c); err != nil {
		// The zero config with defaults applied always validates.
		panic(err)
	}
	return &c
}

func finalize(c *Config) error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	applyStrategyDefaults(&c.Fitting)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return c.Fitting.check()
}

// applyStrategyDefaults fills any strategy row left empty in the YAML file.
// The three rows mirror the conservative/extensive/emergency table used in
// daily monitoring, detailed analysis and crisis detection respectively.
func applyStrategyDefaults(f *FittingConfig) {
	if f.Conservative.Trials == 0 {
		f.Conservative = StrategyConfig{
			Trials: 100, TrialTimeout: Duration(30 * time.Second), Method: "grid",
			TcMin: 1.01, TcMax: 1.3, BetaMin: 0.25, BetaMax: 0.50, OmegaMin: 5.0, OmegaMax: 9.0,
		}
	}
	if f.Extensive.Trials == 0 {
		f.Extensive = StrategyConfig{
			Trials: 500, TrialTimeout: Duration(120 * time.Second), Method: "hybrid",
			TcMin: 1.001, TcMax: 1.5, BetaMin: 0.1, BetaMax: 0.7, OmegaMin: 3.0, OmegaMax: 15.0,
		}
	}
	if f.Emergency.Trials == 0 {
		f.Emergency = StrategyConfig{
			Trials: 1000, TrialTimeout: Duration(300 * time.Second), Method: "random",
			TcMin: 1.001, TcMax: 2.0, BetaMin: 0.05, BetaMax: 1.0, OmegaMin: 1.0, OmegaMax: 20.0,
		}
	}
}

func (f *FittingConfig) check() error {
	if w := f.Quality.StatisticalWeight + f.Quality.TheoreticalWeight +
		f.Quality.PracticalWeight + f.Quality.StabilityWeight; w < 0.999 || w > 1.001 {
		return fmt.Errorf("quality weights must sum to 1, got %v", w)
	}
	for _, s := range []StrategyConfig{f.Conservative, f.Extensive, f.Emergency} {
		if s.TcMin <= 1.0 {
			return fmt.Errorf("tc_min must exceed 1.0 (critical time after the window), got %v", s.TcMin)
		}
		if s.TcMin >= s.TcMax || s.BetaMin >= s.BetaMax || s.OmegaMin >= s.OmegaMax {
			return fmt.Errorf("strategy ranges must be non-empty")
		}
	}
	if f.Quality.MinUsableRSquared < f.Quality.MinRSquared {
		return fmt.Errorf("min_usable_r_squared %v must not be below min_r_squared %v",
			f.Quality.MinUsableRSquared, f.Quality.MinRSquared)
	}
	if !(f.ActionableTc < f.PracticalTc && f.PracticalTc < f.DistantTc) {
		return fmt.Errorf("horizon tiers must be increasing: %v, %v, %v", f.ActionableTc, f.PracticalTc, f.DistantTc)
	}
	return nil
}
