// Package pricing prices European options under the Black-Scholes model.
//
// Two independent methods are provided:
//   - a closed-form analytic formula (Option.Price)
//   - a Monte Carlo simulation of the terminal price (Option.Simulate)
//
// The sensitivities (Delta, Gamma, Vega, Theta, Rho) are closed-form
// expressions of the same model, not numerical derivatives of Price.
//
// An Option is immutable once constructed and all of its methods are safe
// for concurrent use. Simulation draws from a NormalSource passed by the
// caller; sources are not safe for concurrent use and should not be shared
// between simultaneous simulations.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidContract is returned when the contract parameters make the
	// Black-Scholes formulas undefined (non-positive spot, strike,
	// volatility or maturity, or non-finite values).
	ErrInvalidContract = errors.New("invalid option contract")

	// ErrInvalidArgument is returned for invalid operation arguments such
	// as a non-positive number of simulation paths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKind is returned for an option kind other than Call or Put.
	ErrInvalidKind = errors.New("invalid option kind")
)

// Option is a European option contract on a non-dividend-paying underlying.
type Option struct {
	spot     float64 // S
	strike   float64 // K
	rate     float64 // r, continuously compounded
	vol      float64 // sigma, annualized
	maturity float64 // T, in years
	kind     Kind
}

// NewOption constructs a validated European option.
//
// Parameters:
//   - spot: current price of the underlying, must be > 0
//   - strike: exercise price, must be > 0
//   - rate: continuously-compounded risk-free rate, any finite value
//   - vol: annualized volatility as a decimal (0.2 = 20%), must be > 0
//   - maturity: time to expiry in years, must be > 0
//   - kind: Call or Put
//
// Returns:
//
//	The option, or an error wrapping ErrInvalidContract (or ErrInvalidKind)
//	naming the first offending field. Validation happens here so that no
//	pricing method can observe a contract on which the formulas divide by
//	zero or take the logarithm of a non-positive number.
func NewOption(spot, strike, rate, vol, maturity float64, kind Kind) (*Option, error) {
	if err := positive("spot", spot); err != nil {
		return nil, err
	}
	if err := positive("strike", strike); err != nil {
		return nil, err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidContract, rate)
	}
	if err := positive("volatility", vol); err != nil {
		return nil, err
	}
	if err := positive("maturity", maturity); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(kind))
	}

	return &Option{
		spot:     spot,
		strike:   strike,
		rate:     rate,
		vol:      vol,
		maturity: maturity,
		kind:     kind,
	}, nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a finite value > 0, got %v", ErrInvalidContract, name, v)
	}
	return nil
}

func (o *Option) Spot() float64       { return o.spot }
func (o *Option) Strike() float64     { return o.strike }
func (o *Option) Rate() float64       { return o.rate }
func (o *Option) Volatility() float64 { return o.vol }
func (o *Option) Maturity() float64   { return o.maturity }
func (o *Option) Kind() Kind          { return o.kind }

// String describes the contract for logs.
func (o *Option) String() string {
	return fmt.Sprintf("%s S=%g K=%g r=%g vol=%g T=%g", o.kind, o.spot, o.strike, o.rate, o.vol, o.maturity)
}
