package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		kind       string
		format     string
		rest       bool
		port       string
	)

	cmd := &cobra.Command{
		Use:   "option-pricer",
		Short: "Price a European option with Black-Scholes and Monte Carlo",
		Long: `Prices a European call or put under the Black-Scholes model, both with the
closed-form formula and with a Monte Carlo simulation at several path counts,
and reports the analytic Greeks.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFile); err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			logger.SetVerbosity(cfg.Verbosity)

			prov, err := data.NewProvider(data.Options{
				Name:      cfg.Market.Provider,
				Secondary: cfg.Market.Secondary,
				Dir:       cfg.Market.DataDir,
				Seed:      cfg.Simulation.Seed,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if rest {
				return server.New(cfg, prov).ListenAndServe(ctx, port)
			}

			if kind != "" {
				k, err := pricing.ParseKind(kind)
				if err != nil {
					return err
				}
				cfg.Option.Kind = &k
			}
			if cfg.Option.Kind == nil {
				k := promptKind(cmd.InOrStdin(), cmd.OutOrStdout())
				cfg.Option.Kind = &k
			}

			return run(ctx, cmd, cfg, prov, format)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to YAML config")
	flags.StringVar(&envFile, "env-file", ".env", "path to .env file with provider API keys")
	flags.StringVarP(&kind, "kind", "k", "", "option kind: call|put (prompted when omitted)")
	flags.Float64("spot", 0, "spot price S")
	flags.Float64("strike", 0, "strike price K")
	flags.Float64("rate", 0, "continuously-compounded risk-free rate r")
	flags.Float64("vol", 0, "annualized volatility sigma (0.2 = 20%)")
	flags.Float64("maturity", 0, "time to maturity T in years")
	flags.IntSlice("paths", nil, "Monte Carlo path counts (default 1000,10000,100000,1000000)")
	flags.Uint64("seed", 0, "random seed, 0 = fresh entropy per simulation")
	flags.Int("trials", 0, "repetitions per path count for a convergence study, 0 = off")
	flags.String("ticker", "", "source spot and volatility from market data for this ticker")
	flags.String("provider", "", "market data provider: polygon|massive|csv|synthetic")
	flags.String("secondary", "", "fallback market data provider used when the primary fails")
	flags.String("data-dir", "", "directory of <TICKER>.csv files for the csv provider")
	flags.Int("lookback", 0, "days of history used to estimate volatility")
	flags.String("report-dir", "", "write pricing.json and simulations.csv to this directory")
	flags.StringVarP(&format, "format", "f", "table", "stdout format: table|json|none")
	flags.IntP("verbosity", "v", int(logger.Info), "0=errors,1=info,2=debug,3=trace")
	flags.BoolVar(&rest, "rest", false, "run as REST server")
	flags.StringVar(&port, "port", ":8080", "REST server listen address")

	return cmd
}

// applyFlags overrides configuration values with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	floatFlags := map[string]*float64{
		"strike":   &cfg.Option.Strike,
		"rate":     &cfg.Option.Rate,
		"maturity": &cfg.Option.Maturity,
	}
	for name, dst := range floatFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetFloat64(name); err != nil {
				return err
			}
		}
	}
	// spot and vol are explicit, so they win over market data
	if flags.Changed("spot") {
		v, err := flags.GetFloat64("spot")
		if err != nil {
			return err
		}
		cfg.Option.SetSpot(v)
	}
	if flags.Changed("vol") {
		v, err := flags.GetFloat64("vol")
		if err != nil {
			return err
		}
		cfg.Option.SetVolatility(v)
	}

	if flags.Changed("paths") {
		if cfg.Simulation.Paths, err = flags.GetIntSlice("paths"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		if cfg.Simulation.Seed, err = flags.GetUint64("seed"); err != nil {
			return err
		}
	}
	if flags.Changed("trials") {
		if cfg.Simulation.Trials, err = flags.GetInt("trials"); err != nil {
			return err
		}
	}

	stringFlags := map[string]*string{
		"ticker":     &cfg.Market.Ticker,
		"provider":   &cfg.Market.Provider,
		"secondary":  &cfg.Market.Secondary,
		"data-dir":   &cfg.Market.DataDir,
		"report-dir": &cfg.ReportDir,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return err
			}
		}
	}

	if flags.Changed("lookback") {
		if cfg.Market.LookbackDays, err = flags.GetInt("lookback"); err != nil {
			return err
		}
	}
	if flags.Changed("verbosity") {
		if cfg.Verbosity, err = flags.GetInt("verbosity"); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, prov data.Provider, format string) error {
	start := time.Now()
	res, err := engine.NewEngine(cfg, prov).Run(ctx)
	if err != nil {
		return fmt.Errorf("pricing failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "table", "":
		if err := report.RenderTable(out, res); err != nil {
			return err
		}
	case "json":
		if err := writeJSON(out, res); err != nil {
			return err
		}
	case "none":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if cfg.ReportDir != "" {
		if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
			return fmt.Errorf("create report dir %s: %w", cfg.ReportDir, err)
		}
		if err := report.WriteJSON(res, cfg.ReportDir); err != nil {
			return err
		}
		if err := report.WriteCSV(res, cfg.ReportDir); err != nil {
			return err
		}
		logger.Infof("wrote reports to %s", cfg.ReportDir)
	}

	logger.Infof("finished in %v", time.Since(start))
	return nil
}

func writeJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
