// Package engine runs one complete pricing of a European option: it resolves
// the inputs, prices analytically, simulates for every configured path count
// and computes the Greeks.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Engine prices the option described by its configuration.
type Engine struct {
	cfg  *config.Config
	prov data.Provider
	now  func() time.Time
}

// Inputs are the contract parameters actually priced.
type Inputs struct {
	Ticker     string  `json:"ticker,omitempty"`
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Rate       float64 `json:"rate"`
	Volatility float64 `json:"volatility"`
	Maturity   float64 `json:"maturity"`
}

// Simulation is one Monte Carlo estimate compared with the analytic price.
type Simulation struct {
	pricing.Estimate
	Diff float64 `json:"diff"` // |simulated − analytic|
	Seed uint64  `json:"seed"` // seed of the generator, replays the run
}

// ConvergenceRow summarizes repeated simulations at one path count.
type ConvergenceRow struct {
	Paths          int     `json:"paths"`
	Trials         int     `json:"trials"`
	MeanAbsError   float64 `json:"mean_abs_error"`
	StdDevAbsError float64 `json:"stddev_abs_error"`
	MeanStdError   float64 `json:"mean_std_error"`
}

// Result holds the named results of a pricing run.
type Result struct {
	ID          string             `json:"id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Kind        string             `json:"kind"`
	Inputs      Inputs             `json:"inputs"`
	Market      *data.MarketInputs `json:"market,omitempty"`
	Analytic    float64            `json:"analytic_price"`
	Simulations []Simulation       `json:"simulations"`
	Greeks      pricing.Greeks     `json:"greeks"`
	Convergence []ConvergenceRow   `json:"convergence,omitempty"`
}

// NewEngine returns an engine for cfg. prov is only used when cfg names a
// market ticker and may be nil otherwise.
func NewEngine(cfg *config.Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov, now: time.Now}
}

// Run executes the pricing.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Option.Kind == nil {
		return nil, fmt.Errorf("%w: option kind not set", pricing.ErrInvalidKind)
	}

	res := &Result{
		ID:          uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		Kind:        cfg.Option.Kind.String(),
	}

	inputs, market, err := e.resolveInputs(ctx)
	if err != nil {
		return nil, err
	}
	res.Inputs = inputs
	res.Market = market

	opt, err := pricing.NewOption(inputs.Spot, inputs.Strike, inputs.Rate, inputs.Volatility, inputs.Maturity, *cfg.Option.Kind)
	if err != nil {
		return nil, err
	}
	logger.Infof("pricing %s", opt)

	res.Analytic = opt.Price()
	logger.Debugf("analytic price %.6f", res.Analytic)

	for _, n := range cfg.Simulation.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = pricing.EntropySeed()
		}

		start := time.Now()
		est, err := opt.Simulate(n, pricing.NewSeededSource(seed))
		if err != nil {
			return nil, err
		}
		logger.Debugf("monte carlo n=%d price=%.6f se=%.6f in %v", n, est.Price, est.StdError, time.Since(start))

		res.Simulations = append(res.Simulations, Simulation{
			Estimate: est,
			Diff:     math.Abs(est.Price - res.Analytic),
			Seed:     seed,
		})
	}

	res.Greeks = opt.Greeks()

	if cfg.Simulation.Trials > 0 {
		rows, err := Convergence(ctx, opt, cfg.Simulation.Paths, cfg.Simulation.Trials, cfg.Simulation.Seed)
		if err != nil {
			return nil, err
		}
		res.Convergence = rows
	}

	return res, nil
}

// resolveInputs merges configured values with market estimates. Market data
// fills spot and volatility unless the configuration set them explicitly.
func (e *Engine) resolveInputs(ctx context.Context) (Inputs, *data.MarketInputs, error) {
	o := e.cfg.Option
	in := Inputs{
		Ticker:     e.cfg.Market.Ticker,
		Spot:       o.Spot,
		Strike:     o.Strike,
		Rate:       o.Rate,
		Volatility: o.Volatility,
		Maturity:   o.Maturity,
	}

	if e.cfg.Market.Ticker == "" {
		return in, nil, nil
	}
	if e.prov == nil {
		return in, nil, fmt.Errorf("market ticker %s configured without a data provider", e.cfg.Market.Ticker)
	}

	market, err := data.LoadInputs(ctx, e.prov, e.cfg.Market.Ticker, e.now(), e.cfg.Market.LookbackDays)
	if err != nil {
		return in, nil, err
	}
	if o.MarketSpot() {
		in.Spot = market.Spot
	}
	if o.MarketVolatility() {
		in.Volatility = market.Volatility
	}
	logger.Infof("market inputs for %s: spot=%.4f vol=%.4f (%d bars)", in.Ticker, market.Spot, market.Volatility, market.Bars)
	return in, &market, nil
}

// Convergence repeats the simulation trials times for each path count and
// summarizes the absolute error against the analytic price.
//
// With a non-zero seed, trial i at every path count uses seed+i, so the
// study is reproducible; seed 0 draws fresh entropy for every trial.
func Convergence(ctx context.Context, opt *pricing.Option, paths []int, trials int, seed uint64) ([]ConvergenceRow, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("%w: trials must be >= 1, got %d", pricing.ErrInvalidArgument, trials)
	}
	analytic := opt.Price()

	rows := make([]ConvergenceRow, 0, len(paths))
	for _, n := range paths {
		absErrs := make(stats.Float64Data, 0, trials)
		stdErrs := make(stats.Float64Data, 0, trials)

		for i := 0; i < trials; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			s := seed + uint64(i)
			if seed == 0 {
				s = pricing.EntropySeed()
			}
			est, err := opt.Simulate(n, pricing.NewSeededSource(s))
			if err != nil {
				return nil, err
			}
			absErrs = append(absErrs, math.Abs(est.Price-analytic))
			stdErrs = append(stdErrs, est.StdError)
		}

		row := ConvergenceRow{Paths: n, Trials: trials}
		var err error
		if row.MeanAbsError, err = stats.Mean(absErrs); err != nil {
			return nil, err
		}
		if row.StdDevAbsError, err = stats.StandardDeviation(absErrs); err != nil {
			return nil, err
		}
		if row.MeanStdError, err = stats.Mean(stdErrs); err != nil {
			return nil, err
		}

		logger.Tracef("convergence n=%d mean|err|=%.6f", n, row.MeanAbsError)
		rows = append(rows, row)
	}
	return rows, nil
}
