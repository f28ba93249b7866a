package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Simple sanity check: textbook reference values.
func TestPriceReferenceCase(t *testing.T) {
	call := mustOption(t, 100, 100, 0.05, 0.2, 1, Call)
	put := mustOption(t, 100, 100, 0.05, 0.2, 1, Put)

	assert.InDelta(t, 10.450583572185565, call.Price(), 1e-9)
	assert.InDelta(t, 5.573526022256971, put.Price(), 1e-9)
}

// Put-call parity check
func TestPutCallParity(t *testing.T) {
	cases := []struct{ spot, strike, rate, vol, mat float64 }{
		{100, 100, 0.05, 0.2, 1},
		{80, 100, 0.03, 0.25, 45.0 / 365.0},
		{130, 95, -0.01, 0.6, 2},
		{50, 55, 0.1, 0.05, 0.25},
	}

	for _, tc := range cases {
		call := mustOption(t, tc.spot, tc.strike, tc.rate, tc.vol, tc.mat, Call)
		put := mustOption(t, tc.spot, tc.strike, tc.rate, tc.vol, tc.mat, Put)

		lhs := call.Price() - put.Price()
		rhs := tc.spot - tc.strike*math.Exp(-tc.rate*tc.mat)
		assert.InDelta(t, rhs, lhs, 1e-9*math.Max(1, math.Abs(rhs)), "parity for %+v", tc)
	}
}

func TestAtTheMoneySymmetryWithZeroRate(t *testing.T) {
	call := mustOption(t, 100, 100, 0, 0.3, 0.5, Call)
	put := mustOption(t, 100, 100, 0, 0.3, 0.5, Put)
	assert.InDelta(t, call.Price(), put.Price(), 1e-12)
}

func TestPriceConvergesToIntrinsicNearExpiry(t *testing.T) {
	const tiny = 1e-6

	itmCall := mustOption(t, 110, 100, 0.05, 0.2, tiny, Call)
	otmCall := mustOption(t, 90, 100, 0.05, 0.2, tiny, Call)
	itmPut := mustOption(t, 90, 100, 0.05, 0.2, tiny, Put)
	otmPut := mustOption(t, 110, 100, 0.05, 0.2, tiny, Put)

	assert.InDelta(t, 10, itmCall.Price(), 1e-4)
	assert.InDelta(t, 0, otmCall.Price(), 1e-4)
	assert.InDelta(t, 10, itmPut.Price(), 1e-4)
	assert.InDelta(t, 0, otmPut.Price(), 1e-4)

	assert.Equal(t, 10.0, itmCall.Intrinsic())
	assert.Equal(t, 0.0, otmCall.Intrinsic())
}

func TestPriceIsDeterministic(t *testing.T) {
	opt := mustOption(t, 97, 103, 0.04, 0.31, 0.75, Put)
	assert.Equal(t, opt.Price(), opt.Price())
}
