package yfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Bar is one daily trading bar from the chart endpoint
type Bar struct {
	Date   time.Time
	Close  *float64
	High   *float64
	Low    *float64
	Volume *int64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyHistory fetches daily bars for the given lookback window.
// Bars without a close price are dropped.
func (c *Client) FetchDailyHistory(ctx context.Context, ticker string, lookbackDays int) ([]Bar, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?range=%dd&interval=1d",
		c.baseURL, url.PathEscape(ticker), lookbackDays,
	)

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("chart request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", ticker, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s", ticker, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart for %s: empty result", ticker)
	}

	r := payload.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart for %s: no quote series", ticker)
	}
	q := r.Indicators.Quote[0]

	bars := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bar := Bar{Date: time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)}
		if i < len(q.Close) {
			bar.Close = q.Close[i]
		}
		if bar.Close == nil {
			continue
		}
		if i < len(q.High) {
			bar.High = q.High[i]
		}
		if i < len(q.Low) {
			bar.Low = q.Low[i]
		}
		if i < len(q.Volume) {
			bar.Volume = q.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
