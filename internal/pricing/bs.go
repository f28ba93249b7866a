package pricing

import "math"

// d1d2 returns the Black-Scholes intermediate quantities
//
//	d1 = (ln(S/K) + (r + σ²/2)·T) / (σ·√T)
//	d2 = d1 − σ·√T
//
// They are recomputed on every call; nothing is cached on the Option.
func (o *Option) d1d2() (d1, d2 float64) {
	volSqrtT := o.vol * math.Sqrt(o.maturity)
	d1 = (math.Log(o.spot/o.strike) + (o.rate+0.5*o.vol*o.vol)*o.maturity) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}

// discount is the present value factor e^(−rT).
func (o *Option) discount() float64 {
	return math.Exp(-o.rate * o.maturity)
}

// Price calculates the closed-form Black-Scholes-Merton price.
//
//	Call: S·Φ(d1) − K·e^(−rT)·Φ(d2)
//	Put:  K·e^(−rT)·Φ(−d2) − S·Φ(−d1)
//
// The result is deterministic for a given contract.
func (o *Option) Price() float64 {
	d1, d2 := o.d1d2()

	switch o.kind {
	case Put:
		return o.strike*o.discount()*StdNormalCDF(-d2) - o.spot*StdNormalCDF(-d1)
	default:
		return o.spot*StdNormalCDF(d1) - o.strike*o.discount()*StdNormalCDF(d2)
	}
}

// Intrinsic returns the value of exercising now: max(S−K, 0) for a call,
// max(K−S, 0) for a put.
func (o *Option) Intrinsic() float64 {
	return o.payoff(o.spot)
}

// payoff is the value at expiry for a terminal underlying price sT.
func (o *Option) payoff(sT float64) float64 {
	switch o.kind {
	case Put:
		return math.Max(o.strike-sT, 0)
	default:
		return math.Max(sT-o.strike, 0)
	}
}
