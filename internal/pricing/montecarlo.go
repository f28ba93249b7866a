package pricing

import (
	"fmt"
	"math"
)

// Estimate is the outcome of a Monte Carlo run.
type Estimate struct {
	Paths    int     `json:"paths"`     // number of simulated terminal prices
	Price    float64 `json:"price"`     // discounted sample mean of the payoffs
	StdError float64 `json:"std_error"` // discounted standard error of the mean
}

// Simulate estimates the option price by Monte Carlo.
//
// For each of n trials a standard-normal Z is drawn from src and the
// terminal price under geometric Brownian motion is
//
//	S_T = S·exp((r − σ²/2)·T + σ·√T·Z)
//
// The estimate is e^(−rT) times the sample mean of the payoffs; the discount
// is applied once, to the mean. No variance reduction is applied.
//
// Parameters:
//   - n: number of paths, must be >= 1
//   - src: source of N(0,1) variates, must not be nil
//
// Returns:
//
//	The estimate with its standard error (0 when n == 1), or an error
//	wrapping ErrInvalidArgument.
func (o *Option) Simulate(n int, src NormalSource) (Estimate, error) {
	if n <= 0 {
		return Estimate{}, fmt.Errorf("%w: number of paths must be >= 1, got %d", ErrInvalidArgument, n)
	}
	if src == nil {
		return Estimate{}, fmt.Errorf("%w: nil normal source", ErrInvalidArgument)
	}

	drift := (o.rate - 0.5*o.vol*o.vol) * o.maturity
	volSqrtT := o.vol * math.Sqrt(o.maturity)

	// Welford running mean / sum of squared deviations
	var mean, m2 float64
	for i := 1; i <= n; i++ {
		sT := o.spot * math.Exp(drift+volSqrtT*src.NormFloat64())
		payoff := o.payoff(sT)

		delta := payoff - mean
		mean += delta / float64(i)
		m2 += delta * (payoff - mean)
	}

	df := o.discount()
	est := Estimate{Paths: n, Price: df * mean}
	if n > 1 {
		est.StdError = df * math.Sqrt(m2/float64(n-1)) / math.Sqrt(float64(n))
	}
	return est, nil
}

// SimulatedPrice is Simulate without the standard error.
func (o *Option) SimulatedPrice(n int, src NormalSource) (float64, error) {
	est, err := o.Simulate(n, src)
	if err != nil {
		return 0, err
	}
	return est.Price, nil
}
