package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/internal/external/yfin"
	"github.com/wonny/hegemony/pkg/logger"
)

// Provider is the market data source the collector pulls from
type Provider interface {
	FetchQuote(ctx context.Context, ticker string, date time.Time) (*yfin.Quote, error)
	FetchDailyHistory(ctx context.Context, ticker string, lookbackDays int) ([]yfin.Bar, error)
	FetchSharesOutstanding(ctx context.Context, ticker string) (*int64, error)
}

// Store is the persistence surface the collector writes to
type Store interface {
	DistinctTickers(ctx context.Context) ([]string, error)
	UpsertSnapshot(ctx context.Context, snap contracts.Snapshot) error
	UpsertFundamentals(ctx context.Context, ticker string, f contracts.Fundamentals) error
	ExistingDates(ctx context.Context, ticker string, since time.Time) (map[string]bool, error)
}

// Result summarizes one collection pass
type Result struct {
	Date      time.Time `json:"date"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// Collector pulls the day's quote for every tracked ticker and
// persists snapshots plus fundamentals. Individual ticker failures are
// tolerated; the pass fails only when more than half the universe does.
type Collector struct {
	store    Store
	provider Provider
	limiter  *rate.Limiter
	logger   *logger.Logger
	now      func() time.Time
}

// NewCollector creates a collector pacing requests to requestsPerMin
func NewCollector(store Store, provider Provider, requestsPerMin int, log *logger.Logger) *Collector {
	return &Collector{
		store:    store,
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), 1),
		logger:   log.WithField("module", "collector"),
		now:      time.Now,
	}
}

// Collect fetches and stores today's data for the whole universe
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	today := dateOnly(c.now().UTC())

	tickers, err := c.store.DistinctTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	if len(tickers) == 0 {
		c.logger.Warn("No tickers tracked, nothing to collect")
		return &Result{Date: today}, nil
	}

	result := &Result{Date: today, Total: len(tickers)}

	for _, ticker := range tickers {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		if err := c.collectOne(ctx, ticker, today); err != nil {
			result.Failed++
			c.logger.WithField("ticker", ticker).WithError(err).Warn("Ticker collection failed")
			continue
		}
		result.Succeeded++
	}

	// A mostly failed pass usually means the provider is down or
	// blocking us; do not let it pass as a quiet day.
	if result.Failed*2 > result.Total {
		return result, fmt.Errorf("collection failed for %d of %d tickers", result.Failed, result.Total)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":      today.Format("2006-01-02"),
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Collection pass complete")

	return result, nil
}

func (c *Collector) collectOne(ctx context.Context, ticker string, date time.Time) error {
	quote, err := c.provider.FetchQuote(ctx, ticker, date)
	if err != nil {
		return err
	}

	if err := c.store.UpsertSnapshot(ctx, quote.Snapshot); err != nil {
		return err
	}
	if err := c.store.UpsertFundamentals(ctx, ticker, quote.Fundamentals); err != nil {
		return err
	}

	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
