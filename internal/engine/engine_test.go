package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

func testConfig(kind pricing.Kind) *config.Config {
	cfg := config.Default()
	cfg.Option.Kind = &kind
	cfg.Simulation.Paths = []int{1_000, 20_000}
	cfg.Simulation.Seed = 7
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
}

func TestRunReferenceCall(t *testing.T) {
	eng := NewEngine(testConfig(pricing.Call), nil)
	eng.now = fixedNow

	res, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, fixedNow(), res.GeneratedAt)
	assert.Equal(t, "Call", res.Kind)
	assert.Nil(t, res.Market)
	assert.InDelta(t, 10.4506, res.Analytic, 1e-4)
	assert.InDelta(t, 0.6368, res.Greeks.Delta, 1e-4)

	require.Len(t, res.Simulations, 2)
	for i, sim := range res.Simulations {
		assert.Equal(t, []int{1_000, 20_000}[i], sim.Paths)
		assert.Equal(t, uint64(7), sim.Seed)
		assert.InDelta(t, res.Analytic, sim.Price, 5*sim.StdError)
		assert.Equal(t, math.Abs(sim.Price-res.Analytic), sim.Diff)
	}
	assert.Empty(t, res.Convergence)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	a, err := NewEngine(testConfig(pricing.Put), nil).Run(context.Background())
	require.NoError(t, err)
	b, err := NewEngine(testConfig(pricing.Put), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Simulations, b.Simulations)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRunUnseededRecordsReplayableSeeds(t *testing.T) {
	cfg := testConfig(pricing.Call)
	cfg.Simulation.Seed = 0
	cfg.Simulation.Paths = []int{500}

	res, err := NewEngine(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Simulations, 1)

	sim := res.Simulations[0]
	opt, err := pricing.NewOption(100, 100, 0.05, 0.2, 1, pricing.Call)
	require.NoError(t, err)
	replay, err := opt.SimulatedPrice(500, pricing.NewSeededSource(sim.Seed))
	require.NoError(t, err)
	assert.Equal(t, sim.Price, replay)
}

func TestRunErrors(t *testing.T) {
	cfg := config.Default()
	_, err := NewEngine(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, pricing.ErrInvalidKind)

	cfg = testConfig(pricing.Call)
	cfg.Option.Volatility = 0
	_, err = NewEngine(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, pricing.ErrInvalidContract)

	cfg = testConfig(pricing.Call)
	cfg.Simulation.Paths = []int{0}
	_, err = NewEngine(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, pricing.ErrInvalidArgument)

	cfg = testConfig(pricing.Call)
	cfg.Market.Ticker = "SPY"
	_, err = NewEngine(cfg, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(testConfig(pricing.Call), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithMarketInputs(t *testing.T) {
	cfg := testConfig(pricing.Call)
	cfg.Option.Spot = 0
	cfg.Option.Volatility = 0
	cfg.Market.Ticker = "SPY"
	cfg.Market.LookbackDays = 120

	eng := NewEngine(cfg, data.NewSyntheticProvider(21))
	eng.now = fixedNow

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Market)

	assert.Equal(t, "SPY", res.Inputs.Ticker)
	assert.Equal(t, res.Market.Spot, res.Inputs.Spot)
	assert.Equal(t, res.Market.Volatility, res.Inputs.Volatility)
	assert.Greater(t, res.Inputs.Volatility, 0.0)
}

func TestRunDefaultsYieldToMarket(t *testing.T) {
	cfg := testConfig(pricing.Call)
	cfg.Market.Ticker = "SPY"

	res, err := NewEngine(cfg, data.NewSyntheticProvider(21)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Market)

	assert.Equal(t, res.Market.Spot, res.Inputs.Spot)
	assert.Equal(t, res.Market.Volatility, res.Inputs.Volatility)
	assert.NotEqual(t, 0.2, res.Inputs.Volatility)
}

func TestRunExplicitInputsWinOverMarket(t *testing.T) {
	cfg := testConfig(pricing.Call)
	cfg.Market.Ticker = "SPY"
	cfg.Option.SetSpot(120)
	cfg.Option.SetVolatility(0.35)

	res, err := NewEngine(cfg, data.NewSyntheticProvider(21)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Market)

	assert.Equal(t, 120.0, res.Inputs.Spot)
	assert.Equal(t, 0.35, res.Inputs.Volatility)
}

func TestRunMixesExplicitAndMarketInputs(t *testing.T) {
	cfg := testConfig(pricing.Put)
	cfg.Market.Ticker = "SPY"
	cfg.Option.SetVolatility(0.3)

	res, err := NewEngine(cfg, data.NewSyntheticProvider(21)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, res.Market.Spot, res.Inputs.Spot)
	assert.Equal(t, 0.3, res.Inputs.Volatility)
}

func TestConvergence(t *testing.T) {
	opt, err := pricing.NewOption(100, 100, 0.05, 0.2, 1, pricing.Call)
	require.NoError(t, err)

	rows, err := Convergence(context.Background(), opt, []int{1_000, 100_000}, 12, 99)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 12, rows[0].Trials)
	assert.Less(t, rows[1].MeanAbsError, rows[0].MeanAbsError)
	assert.Less(t, rows[1].MeanStdError, rows[0].MeanStdError)
	assert.GreaterOrEqual(t, rows[0].StdDevAbsError, 0.0)

	again, err := Convergence(context.Background(), opt, []int{1_000, 100_000}, 12, 99)
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	_, err = Convergence(context.Background(), opt, []int{1_000}, 0, 1)
	assert.ErrorIs(t, err, pricing.ErrInvalidArgument)
}

func TestRunWithConvergenceStudy(t *testing.T) {
	cfg := testConfig(pricing.Put)
	cfg.Simulation.Trials = 3

	res, err := NewEngine(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Convergence, 2)
	assert.Equal(t, 1_000, res.Convergence[0].Paths)
}
