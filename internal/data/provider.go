// Package data sources market inputs (spot and historical volatility) for
// an underlying from pluggable daily-bar providers.
package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// TradingDaysPerYear annualizes daily log-return volatility.
const TradingDaysPerYear = 252

// ErrInsufficientData is returned when too few usable bars are available to
// estimate market inputs.
var ErrInsufficientData = errors.New("insufficient market data")

// Provider supplies daily market data.
type Provider interface {
	Name() string
	Secondary() Provider
	GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error)
}

// Bar simplified OHLC
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketInputs are the pricing inputs derived from a bar series.
type MarketInputs struct {
	Spot       float64   `json:"spot"`       // last close
	Volatility float64   `json:"volatility"` // annualized historical volatility
	Bars       int       `json:"bars"`       // number of bars used
	AsOf       time.Time `json:"as_of"`      // date of the last bar
}

// Options selects and configures a provider in NewProvider.
type Options struct {
	Name      string // "polygon", "massive", "csv" or "synthetic"
	Secondary string // optional fallback provider, built with the same options
	APIKey    string
	BaseURL   string // optional override for HTTP providers
	Dir       string // directory of <TICKER>.csv files for the csv provider
	Seed      uint64 // seed for the synthetic provider, 0 = random
}

// NewProvider builds the provider named in opts, chained to opts.Secondary
// when set. HTTP providers read their API key from the environment
// (POLYGON_API_KEY / MASSIVE_API_KEY) when opts.APIKey is empty.
func NewProvider(opts Options) (Provider, error) {
	var secondary Provider
	if opts.Secondary != "" {
		if strings.EqualFold(opts.Secondary, opts.Name) {
			return nil, fmt.Errorf("secondary provider %q must differ from primary", opts.Secondary)
		}
		secOpts := opts
		secOpts.Name, secOpts.Secondary, secOpts.APIKey = opts.Secondary, "", ""
		var err error
		if secondary, err = NewProvider(secOpts); err != nil {
			return nil, fmt.Errorf("secondary: %w", err)
		}
	}

	switch strings.ToLower(opts.Name) {
	case "polygon":
		key := opts.APIKey
		if key == "" {
			key = os.Getenv("POLYGON_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("polygon provider: missing POLYGON_API_KEY")
		}
		return NewPolygonDataProvider(key).WithSecondary(secondary), nil
	case "massive":
		key := opts.APIKey
		if key == "" {
			key = os.Getenv("MASSIVE_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("massive provider: missing MASSIVE_API_KEY")
		}
		prov := NewMassiveDataProvider(key).WithSecondary(secondary)
		if opts.BaseURL != "" {
			prov.BaseURL = opts.BaseURL
		}
		return prov, nil
	case "csv":
		if opts.Dir == "" {
			return nil, fmt.Errorf("csv provider: missing data directory")
		}
		return NewLocalCSVDataProvider(opts.Dir, secondary), nil
	case "synthetic", "":
		if secondary != nil {
			logger.Warnf("synthetic provider never fails, ignoring secondary %s", secondary.Name())
		}
		return NewSyntheticProvider(opts.Seed), nil
	}
	return nil, fmt.Errorf("unknown data provider %q", opts.Name)
}

// fallback delegates a failed request to the provider's secondary, if any.
func fallback(ctx context.Context, prov Provider, ticker string, fromDate, toDate time.Time, cause error) ([]Bar, error) {
	if prov.Secondary() == nil {
		return nil, cause
	}
	logger.Debugf("%s provider failed (%v), delegating to %s", prov.Name(), cause, prov.Secondary().Name())
	return prov.Secondary().GetBars(ctx, ticker, fromDate, toDate)
}

// EstimateInputs derives spot and annualized volatility from daily bars.
//
// Parameters:
//   - bars: daily bars in ascending date order (order is not re-checked)
//
// Returns:
//   - MarketInputs: spot = last positive close, volatility = sample standard
//     deviation of daily log returns scaled by √252. Returns touching a bar
//     without a positive close are skipped, never bridged across the gap.
//   - error: wrapping ErrInsufficientData if fewer than 2 usable returns remain
func EstimateInputs(bars []Bar) (MarketInputs, error) {
	var (
		returns = make(stats.Float64Data, 0, len(bars))
		last    Bar
		usable  int
	)
	for i, b := range bars {
		if !usableClose(b.Close) {
			continue
		}
		usable++
		last = b
		if i > 0 && usableClose(bars[i-1].Close) {
			returns = append(returns, math.Log(b.Close/bars[i-1].Close))
		}
	}
	if len(returns) < 2 {
		return MarketInputs{}, fmt.Errorf("%w: need at least 2 daily returns between positive closes, got %d", ErrInsufficientData, len(returns))
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return MarketInputs{}, fmt.Errorf("volatility estimate: %w", err)
	}

	logger.Tracef("estimated inputs from %d bars (%d returns): spot=%.4f daily sd=%.6f", usable, len(returns), last.Close, sd)

	return MarketInputs{
		Spot:       last.Close,
		Volatility: sd * math.Sqrt(TradingDaysPerYear),
		Bars:       usable,
		AsOf:       last.Date,
	}, nil
}

func usableClose(c float64) bool {
	return c > 0 && !math.IsInf(c, 0)
}

// LoadInputs fetches lookbackDays of bars ending at asOf and estimates inputs.
func LoadInputs(ctx context.Context, prov Provider, ticker string, asOf time.Time, lookbackDays int) (MarketInputs, error) {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	from := asOf.AddDate(0, 0, -lookbackDays)

	logger.Infof(
		"loading %s bars for %s [%s → %s]",
		prov.Name(),
		ticker,
		from.Format("2006-01-02"),
		asOf.Format("2006-01-02"),
	)

	bars, err := prov.GetBars(ctx, ticker, from, asOf)
	if err != nil {
		return MarketInputs{}, fmt.Errorf("fetch bars for %s: %w", ticker, err)
	}
	return EstimateInputs(bars)
}
