// Package config loads pricing run configuration from YAML files and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// DefaultPaths are the simulation sizes priced when none are configured.
var DefaultPaths = []int{1_000, 10_000, 100_000, 1_000_000}

// Config struct
type Config struct {
	Option     OptionSpec     `yaml:"option" json:"option"`
	Simulation SimulationSpec `yaml:"simulation" json:"simulation"`
	Market     MarketSpec     `yaml:"market" json:"market"`
	ReportDir  string         `yaml:"report_dir,omitempty" json:"report_dir,omitempty"` // directory for JSON/CSV reports, empty = none
	Verbosity  int            `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`   // 0=errors,1=info,2=debug,3=trace
}

// OptionSpec holds the contract. When a market ticker is configured, spot and
// volatility come from market data unless they were set explicitly (in the
// YAML file or through SetSpot/SetVolatility) to a non-zero value.
type OptionSpec struct {
	Spot       float64       `yaml:"spot" json:"spot"`
	Strike     float64       `yaml:"strike" json:"strike"`
	Rate       float64       `yaml:"rate" json:"rate"`
	Volatility float64       `yaml:"volatility" json:"volatility"`
	Maturity   float64       `yaml:"maturity" json:"maturity"` // years
	Kind       *pricing.Kind `yaml:"kind,omitempty" json:"kind,omitempty"`

	spotSet bool
	volSet  bool
}

// SetSpot sets an explicit spot price.
func (o *OptionSpec) SetSpot(v float64) {
	o.Spot = v
	o.spotSet = true
}

// SetVolatility sets an explicit volatility.
func (o *OptionSpec) SetVolatility(v float64) {
	o.Volatility = v
	o.volSet = true
}

// MarketSpot reports whether spot should be taken from market data.
func (o OptionSpec) MarketSpot() bool { return !o.spotSet || o.Spot == 0 }

// MarketVolatility reports whether volatility should be taken from market data.
func (o OptionSpec) MarketVolatility() bool { return !o.volSet || o.Volatility == 0 }

// SimulationSpec controls the Monte Carlo runs.
type SimulationSpec struct {
	Paths  []int  `yaml:"paths,omitempty" json:"paths,omitempty"`   // path counts to price
	Seed   uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`     // 0 = fresh entropy per run
	Trials int    `yaml:"trials,omitempty" json:"trials,omitempty"` // repetitions for the convergence study, 0 = off
}

// MarketSpec optionally sources spot and volatility from market data.
type MarketSpec struct {
	Ticker       string `yaml:"ticker,omitempty" json:"ticker,omitempty"`
	Provider     string `yaml:"provider,omitempty" json:"provider,omitempty"`   // polygon, massive, csv, synthetic
	Secondary    string `yaml:"secondary,omitempty" json:"secondary,omitempty"` // fallback provider when the primary fails
	LookbackDays int    `yaml:"lookback_days,omitempty" json:"lookback_days,omitempty"`
	DataDir      string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
}

// Default returns the textbook contract priced by the tool when nothing else
// is configured. Kind is left unset so callers can prompt for it.
func Default() *Config {
	return &Config{
		Option: OptionSpec{
			Spot:       100,
			Strike:     100,
			Rate:       0.05,
			Volatility: 0.2,
			Maturity:   1,
		},
		Simulation: SimulationSpec{Paths: append([]int(nil), DefaultPaths...)},
		Market:     MarketSpec{Provider: "synthetic", LookbackDays: 90},
		Verbosity:  int(logger.Info),
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var present struct {
		Option struct {
			Spot       *float64 `yaml:"spot"`
			Volatility *float64 `yaml:"volatility"`
		} `yaml:"option"`
	}
	if err := yaml.Unmarshal(b, &present); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Option.spotSet = present.Option.Spot != nil
	cfg.Option.volSet = present.Option.Volatility != nil

	cfg.fillDefaults()
	return cfg, nil
}

func (cfg *Config) fillDefaults() {
	if len(cfg.Simulation.Paths) == 0 {
		cfg.Simulation.Paths = append([]int(nil), DefaultPaths...)
	}
	if cfg.Market.Provider == "" {
		cfg.Market.Provider = "synthetic"
	}
	if cfg.Market.LookbackDays <= 0 {
		cfg.Market.LookbackDays = 90
	}
}

// Validate checks settings that do not depend on market data. Contract
// fields are validated when the option is constructed.
func (cfg *Config) Validate() error {
	for _, n := range cfg.Simulation.Paths {
		if n <= 0 {
			return fmt.Errorf("%w: simulation paths must be >= 1, got %d", pricing.ErrInvalidArgument, n)
		}
	}
	if cfg.Simulation.Trials < 0 {
		return fmt.Errorf("%w: trials must be >= 0, got %d", pricing.ErrInvalidArgument, cfg.Simulation.Trials)
	}
	if cfg.Option.Kind != nil && !cfg.Option.Kind.Valid() {
		return fmt.Errorf("%w: %d", pricing.ErrInvalidKind, int(*cfg.Option.Kind))
	}
	return nil
}

// LoadEnv loads variables from a .env file without overriding the existing
// environment. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Tracef("no env file at %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s file: %w", path, err)
	}
	logger.Debugf("loaded environment from %s", path)
	return nil
}
