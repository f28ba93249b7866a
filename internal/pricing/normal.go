package pricing

import "math"

const sqrt2Pi = 2.5066282746310002

// StdNormalPDF is the probability density function of N(0,1):
// exp(-x²/2) / √(2π).
func StdNormalPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// StdNormalCDF is the cumulative distribution function of N(0,1).
//
// It is evaluated as 0.5·erfc(-x/√2) rather than 0.5·(1+erf(x/√2)); the two
// are equal but the erfc form keeps relative precision deep in the lower tail
// where 1+erf(x) cancels.
func StdNormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
