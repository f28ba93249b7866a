package data

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// polygonDataProvider implements Provider using the Polygon.io REST client.
type polygonDataProvider struct {
	client    *polygon.Client
	secondary Provider
}

func NewPolygonDataProvider(apiKey string) *polygonDataProvider {
	return &polygonDataProvider{client: polygon.New(apiKey)}
}

// WithSecondary sets the fallback provider used when a request fails.
func (polygonDataProv *polygonDataProvider) WithSecondary(secondary Provider) *polygonDataProvider {
	polygonDataProv.secondary = secondary
	return polygonDataProv
}

func (polygonDataProv *polygonDataProvider) Name() string { return "polygon" }

func (polygonDataProv *polygonDataProvider) Secondary() Provider {
	return polygonDataProv.secondary
}

func (polygonDataProv *polygonDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	logger.Debugf("fetching polygon daily aggs for %s", ticker)

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(fromDate),
		To:         models.Millis(toDate),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := polygonDataProv.client.ListAggs(ctx, params)

	var out []Bar
	for iter.Next() {
		agg := iter.Item()
		out = append(out, Bar{
			Date:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return fallback(ctx, polygonDataProv, ticker, fromDate, toDate, fmt.Errorf("polygon aggs: %w", err))
	}

	logger.Tracef("polygon returned %d bars for %s", len(out), ticker)
	return out, nil
}
