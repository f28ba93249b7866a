package pricing

import "math"

// Greeks groups the analytic sensitivities of an option price.
// Theta is ∂price/∂T per year, not converted to a per-day figure.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// Greeks returns all five sensitivities.
func (o *Option) Greeks() Greeks {
	return Greeks{
		Delta: o.Delta(),
		Gamma: o.Gamma(),
		Vega:  o.Vega(),
		Theta: o.Theta(),
		Rho:   o.Rho(),
	}
}

// Delta is ∂price/∂S: Φ(d1) for a call, Φ(d1) − 1 for a put.
func (o *Option) Delta() float64 {
	d1, _ := o.d1d2()
	if o.kind == Put {
		return StdNormalCDF(d1) - 1
	}
	return StdNormalCDF(d1)
}

// Gamma is ∂²price/∂S², identical for calls and puts: φ(d1) / (S·σ·√T).
func (o *Option) Gamma() float64 {
	d1, _ := o.d1d2()
	return StdNormalPDF(d1) / (o.spot * o.vol * math.Sqrt(o.maturity))
}

// Vega is ∂price/∂σ, identical for calls and puts: S·φ(d1)·√T.
// The value is per unit of volatility (1.0 = 100 vol points).
func (o *Option) Vega() float64 {
	d1, _ := o.d1d2()
	return o.spot * StdNormalPDF(d1) * math.Sqrt(o.maturity)
}

// Theta is the time-decay term of the Black-Scholes equation.
//
//	Call: −S·φ(d1)·σ/(2√T) − r·K·e^(−rT)·Φ(d2)
//	Put:  −S·φ(d1)·σ/(2√T) + r·K·e^(−rT)·Φ(−d2)
func (o *Option) Theta() float64 {
	d1, d2 := o.d1d2()
	decay := -(o.spot * StdNormalPDF(d1) * o.vol) / (2 * math.Sqrt(o.maturity))

	if o.kind == Put {
		return decay + o.rate*o.strike*o.discount()*StdNormalCDF(-d2)
	}
	return decay - o.rate*o.strike*o.discount()*StdNormalCDF(d2)
}

// Rho is ∂price/∂r.
//
//	Call:  K·T·e^(−rT)·Φ(d2)
//	Put:  −K·T·e^(−rT)·Φ(−d2)
func (o *Option) Rho() float64 {
	_, d2 := o.d1d2()

	if o.kind == Put {
		return -o.strike * o.maturity * o.discount() * StdNormalCDF(-d2)
	}
	return o.strike * o.maturity * o.discount() * StdNormalCDF(d2)
}
