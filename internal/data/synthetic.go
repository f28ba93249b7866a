package data

import (
	"context"
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// synthDataProvider implements Provider generating a synthetic daily random
// walk (geometric Brownian motion, weekdays only).
type synthDataProvider struct {
	secondary Provider
	seed      uint64

	// StartPrice is the close of the first generated bar.
	StartPrice float64
	// Volatility is the annualized volatility of the generated walk.
	Volatility float64
}

// NewSyntheticProvider returns a synthetic provider. The same non-zero seed
// always generates the same bars for the same date range; seed 0 draws a
// fresh walk on every call.
func NewSyntheticProvider(seed uint64) *synthDataProvider {
	return &synthDataProvider{seed: seed, StartPrice: 100, Volatility: 0.2}
}

func (synthDataProv *synthDataProvider) Name() string { return "synthetic" }

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return synthDataProv.secondary
}

func (synthDataProv *synthDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	seed := synthDataProv.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	dailyVol := synthDataProv.Volatility / math.Sqrt(TradingDaysPerYear)
	price := synthDataProv.StartPrice

	var out []Bar
	for cur := fromDate; !cur.After(toDate); cur = cur.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}

		open := price
		if len(out) > 0 {
			price *= math.Exp(-0.5*dailyVol*dailyVol + dailyVol*rng.NormFloat64())
		}
		high := math.Max(open, price) * (1 + math.Abs(rng.NormFloat64())*dailyVol*0.25)
		low := math.Min(open, price) * (1 - math.Abs(rng.NormFloat64())*dailyVol*0.25)

		out = append(out, Bar{
			Date:   cur,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: float64(1000 + rng.Intn(5000)),
		})
	}
	return out, nil
}
