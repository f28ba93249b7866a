package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// localCSVDataProvider implements Provider from local CSV files, one file per
// ticker named <TICKER>.csv with the header date,open,high,low,close,volume.
// Dates use the 2006-01-02 layout.
type localCSVDataProvider struct {
	dir       string
	secondary Provider
}

type csvBar struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// NewLocalCSVDataProvider convenience constructor.
func NewLocalCSVDataProvider(dir string, secondary Provider) *localCSVDataProvider {
	return &localCSVDataProvider{dir: dir, secondary: secondary}
}

func (localCSVDataProv *localCSVDataProvider) Name() string { return "csv" }

func (localCSVDataProv *localCSVDataProvider) Secondary() Provider {
	return localCSVDataProv.secondary
}

func (localCSVDataProv *localCSVDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	bars, err := localCSVDataProv.readBars(ticker, fromDate, toDate)
	if err != nil {
		return fallback(ctx, localCSVDataProv, ticker, fromDate, toDate, err)
	}
	return bars, nil
}

func (localCSVDataProv *localCSVDataProvider) readBars(ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	path := filepath.Join(localCSVDataProv.dir, strings.ToUpper(ticker)+".csv")
	logger.Debugf("reading bars from %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	from := truncateDay(fromDate)
	to := truncateDay(toDate)

	out := make([]Bar, 0, len(rows))
	for _, row := range rows {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
		if err != nil {
			logger.Tracef("skipping row with malformed date %q", row.Date)
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, Bar{
			Date:   d,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
