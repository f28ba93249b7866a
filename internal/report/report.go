// Package report renders pricing results for people (console tables) and
// for other tools (JSON and CSV files).
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/contactkeval/option-pricer/internal/engine"
)

const (
	JSONFile = "pricing.json"
	CSVFile  = "simulations.csv"
)

// Places is the number of decimals shown for prices and Greeks.
const Places = 5

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(Places)
}

// RenderTable writes the human-readable report: inputs, pricing and Greeks.
func RenderTable(w io.Writer, res *engine.Result) error {
	p := message.NewPrinter(language.English)
	in := res.Inputs

	if _, err := fmt.Fprintf(w, "Option Type: %s\n", res.Kind); err != nil {
		return err
	}
	if in.Ticker != "" {
		fmt.Fprintf(w, "Underlying: %s\n", in.Ticker)
	}
	fmt.Fprintf(w, "Spot: %s, Strike: %s\n", fixed(in.Spot), fixed(in.Strike))
	fmt.Fprintf(w, "Maturity: %g years, Vol: %s%%, Rate: %s%%\n\n",
		in.Maturity,
		decimal.NewFromFloat(in.Volatility*100).StringFixed(2),
		decimal.NewFromFloat(in.Rate*100).StringFixed(2),
	)

	fmt.Fprintln(w, "[Pricing]")
	pricingTable := tablewriter.NewWriter(w)
	pricingTable.SetHeader([]string{"Method", "Paths", "Price", "Std Error", "Diff"})
	pricingTable.SetAlignment(tablewriter.ALIGN_RIGHT)
	pricingTable.Append([]string{"Black-Scholes", "-", fixed(res.Analytic), "-", "-"})
	for _, sim := range res.Simulations {
		pricingTable.Append([]string{
			"Monte Carlo",
			p.Sprintf("%d", sim.Paths),
			fixed(sim.Price),
			fixed(sim.StdError),
			fixed(sim.Diff),
		})
	}
	pricingTable.Render()

	fmt.Fprintln(w, "\n[Greeks]")
	greeksTable := tablewriter.NewWriter(w)
	greeksTable.SetHeader([]string{"Greek", "Value"})
	greeksTable.SetAlignment(tablewriter.ALIGN_RIGHT)
	greeksTable.AppendBulk([][]string{
		{"Delta", fixed(res.Greeks.Delta)},
		{"Gamma", fixed(res.Greeks.Gamma)},
		{"Vega", fixed(res.Greeks.Vega)},
		{"Theta", fixed(res.Greeks.Theta)},
		{"Rho", fixed(res.Greeks.Rho)},
	})
	greeksTable.Render()

	if len(res.Convergence) > 0 {
		fmt.Fprintln(w, "\n[Convergence]")
		convTable := tablewriter.NewWriter(w)
		convTable.SetHeader([]string{"Paths", "Trials", "Mean |Err|", "StdDev |Err|", "Mean Std Error"})
		convTable.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, row := range res.Convergence {
			convTable.Append([]string{
				p.Sprintf("%d", row.Paths),
				strconv.Itoa(row.Trials),
				fixed(row.MeanAbsError),
				fixed(row.StdDevAbsError),
				fixed(row.MeanStdError),
			})
		}
		convTable.Render()
	}
	return nil
}

// WriteJSON writes the full result to <outdir>/pricing.json.
func WriteJSON(res *engine.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, JSONFile), b, 0644)
}

// WriteCSV writes one row per Monte Carlo estimate to <outdir>/simulations.csv.
func WriteCSV(res *engine.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, CSVFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"id", "kind", "spot", "strike", "rate", "volatility", "maturity", "analytic_price", "paths", "seed", "mc_price", "std_error", "diff"}
	if err := w.Write(headers); err != nil {
		return err
	}
	in := res.Inputs
	for _, sim := range res.Simulations {
		row := []string{
			res.ID,
			res.Kind,
			strconv.FormatFloat(in.Spot, 'g', -1, 64),
			strconv.FormatFloat(in.Strike, 'g', -1, 64),
			strconv.FormatFloat(in.Rate, 'g', -1, 64),
			strconv.FormatFloat(in.Volatility, 'g', -1, 64),
			strconv.FormatFloat(in.Maturity, 'g', -1, 64),
			strconv.FormatFloat(res.Analytic, 'g', -1, 64),
			strconv.Itoa(sim.Paths),
			strconv.FormatUint(sim.Seed, 10),
			strconv.FormatFloat(sim.Price, 'g', -1, 64),
			strconv.FormatFloat(sim.StdError, 'g', -1, 64),
			strconv.FormatFloat(sim.Diff, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
