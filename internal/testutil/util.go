// Package testutil holds deterministic fixtures shared by package tests.
package testutil

import (
	"math"
	"time"
)

// SequenceSource replays a fixed list of standard-normal variates,
// wrapping around when exhausted. It lets simulation tests compute the
// expected estimate by hand.
type SequenceSource struct {
	Values []float64
	next   int
	Draws  int
}

// NewSequenceSource returns a source cycling over values.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{Values: values}
}

// NormFloat64 returns the next value of the sequence.
func (s *SequenceSource) NormFloat64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next]
	s.next = (s.next + 1) % len(s.Values)
	s.Draws++
	return v
}

// Bar mirrors the fields of a daily OHLCV bar without importing the data
// package, so fixtures stay usable from every package.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// GeometricCloses builds n daily bars starting at start whose closes move by
// alternating log returns of +step and -step from the initial price. The
// sample standard deviation of those log returns is known in closed form,
// which makes volatility estimates checkable.
func GeometricCloses(start time.Time, first float64, step float64, n int) []Bar {
	out := make([]Bar, 0, n)
	price := first
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%2 == 1 {
				price *= math.Exp(step)
			} else {
				price *= math.Exp(-step)
			}
		}
		out = append(out, Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		})
	}
	return out
}
