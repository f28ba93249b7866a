package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "-v", "0"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPromptKind(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, pricing.Put, promptKind(strings.NewReader("p\n"), &out))
	assert.Contains(t, out.String(), "C = Call, P = Put")

	assert.Equal(t, pricing.Put, promptKind(strings.NewReader("PUT"), &out))
	assert.Equal(t, pricing.Call, promptKind(strings.NewReader("c"), &out))
	assert.Equal(t, pricing.Call, promptKind(strings.NewReader("z\n"), &out))
	assert.Equal(t, pricing.Call, promptKind(strings.NewReader(""), &out))
}

func TestRootJSONOutput(t *testing.T) {
	out, err := execute(t, "", "--kind", "put", "--seed", "3", "--paths", "1000,5000", "--format", "json")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Put", res.Kind)
	assert.InDelta(t, 5.5735, res.Analytic, 1e-4)
	require.Len(t, res.Simulations, 2)
	assert.Equal(t, uint64(3), res.Simulations[0].Seed)
}

func TestRootTickerUsesMarketInputs(t *testing.T) {
	out, err := execute(t, "", "--kind", "call", "--seed", "5", "--paths", "100",
		"--ticker", "SPY", "--provider", "synthetic", "--format", "json")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Market)
	assert.Equal(t, res.Market.Spot, res.Inputs.Spot)
	assert.Equal(t, res.Market.Volatility, res.Inputs.Volatility)

	out, err = execute(t, "", "--kind", "call", "--seed", "5", "--paths", "100",
		"--ticker", "SPY", "--spot", "105", "--format", "json")
	require.NoError(t, err)

	res = engine.Result{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Market)
	assert.Equal(t, 105.0, res.Inputs.Spot)
	assert.Equal(t, res.Market.Volatility, res.Inputs.Volatility)
}

func TestRootSecondaryProvider(t *testing.T) {
	// empty csv directory: every lookup fails over to the synthetic provider
	out, err := execute(t, "", "--kind", "put", "--seed", "2", "--paths", "100", "--ticker", "SPY",
		"--provider", "csv", "--data-dir", t.TempDir(), "--secondary", "synthetic", "--format", "json")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Market)
	assert.Greater(t, res.Market.Bars, 2)

	_, err = execute(t, "", "--kind", "put", "--paths", "100", "--ticker", "SPY",
		"--provider", "csv", "--data-dir", t.TempDir(), "--format", "json")
	assert.Error(t, err)
}

func TestRootPromptsForKind(t *testing.T) {
	out, err := execute(t, "p\n", "--seed", "1", "--paths", "100")
	require.NoError(t, err)

	assert.Contains(t, out, "Choose option type")
	assert.Contains(t, out, "Option Type: Put")
	assert.Contains(t, out, "[Greeks]")
}

func TestRootContractFlags(t *testing.T) {
	out, err := execute(t, "", "-k", "call", "--spot", "110", "--strike", "100", "--rate", "0",
		"--vol", "0.25", "--maturity", "0.5", "--paths", "100", "--seed", "1", "-f", "json")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, engine.Inputs{Spot: 110, Strike: 100, Rate: 0, Volatility: 0.25, Maturity: 0.5}, res.Inputs)
}

func TestRootWritesReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := execute(t, "", "-k", "call", "--paths", "100", "--seed", "1", "-f", "none", "--report-dir", dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, report.JSONFile))
	assert.FileExists(t, filepath.Join(dir, report.CSVFile))
}

func TestRootConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("option:\n  spot: 90\n  strike: 100\n  rate: 0.02\n  volatility: 0.3\n  maturity: 2\n  kind: put\nsimulation:\n  paths: [200]\n  seed: 8\n"), 0644))

	out, err := execute(t, "", "-c", path, "--strike", "95", "-f", "json")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Put", res.Kind)
	assert.Equal(t, 90.0, res.Inputs.Spot)
	assert.Equal(t, 95.0, res.Inputs.Strike)
	require.Len(t, res.Simulations, 1)
	assert.Equal(t, 200, res.Simulations[0].Paths)
}

func TestRootErrors(t *testing.T) {
	_, err := execute(t, "", "-k", "straddle")
	assert.ErrorIs(t, err, pricing.ErrInvalidKind)

	_, err = execute(t, "", "-k", "call", "--vol", "0", "--paths", "10")
	assert.ErrorIs(t, err, pricing.ErrInvalidContract)

	_, err = execute(t, "", "-k", "call", "--paths", "0")
	assert.ErrorIs(t, err, pricing.ErrInvalidArgument)

	_, err = execute(t, "", "-k", "call", "--paths", "10", "-f", "xml")
	assert.Error(t, err)
}
