package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

// BackfillResult summarizes one backfill pass
type BackfillResult struct {
	Tickers  int `json:"tickers"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Backfiller reconstructs missing historical snapshot rows from daily
// close prices. Historical market caps are approximated as close price
// times the current shares outstanding.
type Backfiller struct {
	store    Store
	provider Provider
	limiter  *rate.Limiter
	logger   *logger.Logger
	now      func() time.Time
}

// NewBackfiller creates a backfiller pacing requests to requestsPerMin
func NewBackfiller(store Store, provider Provider, requestsPerMin int, log *logger.Logger) *Backfiller {
	return &Backfiller{
		store:    store,
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), 1),
		logger:   log.WithField("module", "backfiller"),
		now:      time.Now,
	}
}

// Run fills snapshot gaps for every tracked ticker over the lookback
// window. Dates that already have a row are never overwritten.
func (b *Backfiller) Run(ctx context.Context, lookbackDays int) (*BackfillResult, error) {
	tickers, err := b.store.DistinctTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}

	result := &BackfillResult{Tickers: len(tickers)}
	since := dateOnly(b.now().UTC()).AddDate(0, 0, -lookbackDays)

	for _, ticker := range tickers {
		inserted, skipped, err := b.backfillOne(ctx, ticker, since, lookbackDays)
		if err != nil {
			result.Failed++
			b.logger.WithField("ticker", ticker).WithError(err).Warn("Ticker backfill failed")
			continue
		}
		result.Inserted += inserted
		result.Skipped += skipped
	}

	b.logger.WithFields(map[string]interface{}{
		"tickers":  result.Tickers,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("Backfill pass complete")

	return result, nil
}

// RunTicker fills snapshot gaps for a single ticker, typically right
// after it joins the universe.
func (b *Backfiller) RunTicker(ctx context.Context, ticker string, lookbackDays int) (*BackfillResult, error) {
	since := dateOnly(b.now().UTC()).AddDate(0, 0, -lookbackDays)

	inserted, skipped, err := b.backfillOne(ctx, ticker, since, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to backfill %s: %w", ticker, err)
	}

	b.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"inserted": inserted,
		"skipped":  skipped,
	}).Info("Ticker backfill complete")

	return &BackfillResult{Tickers: 1, Inserted: inserted, Skipped: skipped}, nil
}

func (b *Backfiller) backfillOne(ctx context.Context, ticker string, since time.Time, lookbackDays int) (int, int, error) {
	existing, err := b.store.ExistingDates(ctx, ticker, since)
	if err != nil {
		return 0, 0, err
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limiter interrupted: %w", err)
	}
	bars, err := b.provider.FetchDailyHistory(ctx, ticker, lookbackDays)
	if err != nil {
		return 0, 0, err
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limiter interrupted: %w", err)
	}
	shares, err := b.provider.FetchSharesOutstanding(ctx, ticker)
	if err != nil {
		return 0, 0, err
	}

	inserted, skipped := 0, 0
	for _, bar := range bars {
		if bar.Date.Before(since) {
			continue
		}
		if existing[bar.Date.Format("2006-01-02")] {
			skipped++
			continue
		}

		snap := contracts.Snapshot{
			Ticker:  ticker,
			Date:    bar.Date,
			Price:   bar.Close,
			DayHigh: bar.High,
			DayLow:  bar.Low,
			Volume:  bar.Volume,
		}
		if shares != nil && bar.Close != nil {
			mc := int64(*bar.Close * float64(*shares))
			snap.MarketCap = &mc
		}

		if err := b.store.UpsertSnapshot(ctx, snap); err != nil {
			return inserted, skipped, err
		}
		inserted++
	}

	return inserted, skipped, nil
}
