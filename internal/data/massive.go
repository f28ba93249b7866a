// This file contains a Massive-backed Provider implementation that retrieves
// daily aggregate bars via the Massive HTTP API.
//
// Design notes:
//   - Uses raw HTTP calls instead of the official Massive SDK
//   - Supports pagination, rate-limiting retries, and fallback providers
//   - Logging is verbose at Debug/Trace levels for diagnostics
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// RetryDelay returns how long to wait after an HTTP 429.
	// Defaults to sleeping until the next minute boundary.
	RetryDelay func(now time.Time) time.Duration

	// secondary is an optional fallback provider.
	secondary Provider
}

// massiveAggsResp models one page of Massive's aggregates API.
type massiveAggsResp struct {
	Ticker  string `json:"ticker"`
	Status  string `json:"status"`
	Results []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		VWAP      float64 `json:"vw"` // volume-weighted average price
		Volume    float64 `json:"v"`  // trading volume in the window
		Trades    int64   `json:"n"`  // number of transactions in the window
		Timestamp int64   `json:"t"`  // epoch millis
	} `json:"results"`
	NextURL string `json:"next_url"`
	Message string `json:"message"`
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// It initializes an HTTP client with sensible defaults for:
//   - timeouts
//   - connection pooling
//   - HTTP/2 support
//   - gzip decompression
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL:    "https://api.massive.com",
		RetryDelay: untilNextMinute,
	}
}

// WithSecondary sets the fallback provider used when a request fails.
func (massiveDataProv *massiveDataProvider) WithSecondary(secondary Provider) *massiveDataProvider {
	massiveDataProv.secondary = secondary
	return massiveDataProv
}

func (massiveDataProv *massiveDataProvider) Name() string { return "massive" }

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetBars retrieves daily OHLCV bars for the given symbol and date range,
// following next_url pagination until exhausted.
//
// Parameters:
//   - ticker: ticker symbol
//   - fromDate: start date
//   - toDate: end date
//
// Returns:
//   - []Bar: time-ordered bars
//   - error: if retrieval or decoding fails and no secondary can serve it
func (massiveDataProv *massiveDataProvider) GetBars(
	ctx context.Context,
	ticker string,
	fromDate, toDate time.Time,
) ([]Bar, error) {

	bars, err := massiveDataProv.getBars(ctx, ticker, fromDate, toDate)
	if err != nil {
		logger.Errorf("massive bars request failed: %v", err)
		return fallback(ctx, massiveDataProv, ticker, fromDate, toDate, err)
	}
	return bars, nil
}

func (massiveDataProv *massiveDataProvider) getBars(
	ctx context.Context,
	ticker string,
	fromDate, toDate time.Time,
) ([]Bar, error) {

	logger.Debugf(
		"fetching bars: %s from=%s to=%s",
		ticker,
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
	)

	u, err := url.Parse(fmt.Sprintf(
		"%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		massiveDataProv.BaseURL,
		url.PathEscape(ticker),
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
	))
	if err != nil {
		return nil, err
	}

	query := u.Query()
	query.Set("adjusted", "true")
	query.Set("sort", "asc")
	query.Set("limit", "50000")
	query.Set("apiKey", massiveDataProv.APIKey)
	u.RawQuery = query.Encode()
	reqURL := u.String()

	out := []Bar{}

	// Handle pagination
	for reqURL != "" {
		logger.Tracef("aggs request URL: %s", reqURL)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+massiveDataProv.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := massiveDataProv.processGetRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			var dbg struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(body, &dbg)
			return nil, fmt.Errorf("massive returned status %d: %s", resp.StatusCode, dbg.Message)
		}

		var page massiveAggsResp
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing massive response: %w", err)
		}

		logger.Tracef("bars received: %d records", len(page.Results))

		for _, r := range page.Results {
			out = append(out, Bar{
				Date:   time.UnixMilli(r.Timestamp).UTC(),
				Open:   r.Open,
				High:   r.High,
				Low:    r.Low,
				Close:  r.Close,
				Volume: r.Volume,
			})
		}

		reqURL = page.NextURL
	}

	return out, nil
}

// processGetRequest executes an HTTP GET request with rate-limit handling.
//
// Behavior:
//   - Retries on HTTP 429 until the context is done
//   - Waits RetryDelay (next minute boundary by default) between attempts
//   - Returns the response for any other status; the caller checks it
func (massiveDataProv *massiveDataProvider) processGetRequest(
	ctx context.Context,
	req *http.Request,
) (*http.Response, error) {

	for {
		resp, err := massiveDataProv.Client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		delay := massiveDataProv.RetryDelay
		if delay == nil {
			delay = untilNextMinute
		}
		sleepDuration := delay(time.Now())
		logger.Infof("rate limit hit, sleeping for %s", sleepDuration)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}
}

func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}
