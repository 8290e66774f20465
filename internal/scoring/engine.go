package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

// Engine computes hegemony scores for every tracked company as of one
// snapshot date: it joins each sector's members against market and
// fundamental data, evaluates the four dimensions, resolves
// multi-sector membership to the best sector context, applies EMA
// smoothing against the persisted prior score, and prunes history
// beyond the retention window.
type Engine struct {
	store  contracts.ScoreStore
	logger *logger.Logger
	now    func() time.Time
}

// NewEngine creates a new scoring engine
func NewEngine(store contracts.ScoreStore, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: log.WithField("module", "scoring"),
		now:    time.Now,
	}
}

// Run computes and persists scores as of the given date. A nil date
// means the most recent snapshot date; when no snapshot exists at all
// the run is a reported no-op, not an error.
func (e *Engine) Run(ctx context.Context, asOf *time.Time) (*contracts.RunResult, error) {
	start := time.Now()

	date := asOf
	if date == nil {
		latest, err := e.store.LatestSnapshotDate(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest snapshot date: %w", err)
		}
		if latest == nil {
			e.logger.Warn("No snapshot data available, skipping score calculation")
			return &contracts.RunResult{Skipped: true, Duration: time.Since(start)}, nil
		}
		date = latest
	}

	sectorIDs, err := e.store.SectorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}

	// A ticker can belong to several sectors. Keep the evaluation with
	// the strictly highest raw total: a company is scored in its best
	// competitive context.
	best := make(map[string]contracts.ScoreSet)

	for _, sectorID := range sectorIDs {
		rows, err := e.store.SectorRows(ctx, sectorID, *date)
		if err != nil {
			return nil, fmt.Errorf("sector %s rows: %w", sectorID, err)
		}
		if len(rows) == 0 {
			continue
		}

		totalMC := SectorTotalMarketCap(rows)

		for _, row := range rows {
			scores := Evaluate(row, totalMC)
			if prev, ok := best[row.Ticker]; !ok || scores.RawTotal > prev.RawTotal {
				best[row.Ticker] = scores
			}
		}
	}

	// Deterministic persist order
	tickers := make([]string, 0, len(best))
	for ticker := range best {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	updated := 0
	for _, ticker := range tickers {
		scores := best[ticker]

		prev, err := e.store.SmoothedScore(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("prior smoothed score for %s: %w", ticker, err)
		}
		smoothed := Smooth(scores.RawTotal, prev)

		if err := e.store.SaveScores(ctx, ticker, scores, smoothed); err != nil {
			return nil, fmt.Errorf("save scores for %s: %w", ticker, err)
		}

		point := contracts.HistoryPoint{
			Ticker:        ticker,
			Date:          *date,
			RawTotal:      scores.RawTotal,
			Smoothed:      smoothed,
			Scale:         scores.Scale,
			Growth:        scores.Growth,
			Profitability: scores.Profitability,
			Sentiment:     scores.Sentiment,
		}
		if err := e.store.SaveHistory(ctx, point); err != nil {
			return nil, fmt.Errorf("save history for %s: %w", ticker, err)
		}

		updated++
	}

	pruned, err := e.store.PruneHistory(ctx, e.RetentionCutoff())
	if err != nil {
		return nil, fmt.Errorf("prune history: %w", err)
	}

	result := &contracts.RunResult{
		AsOf:          *date,
		Scored:        updated,
		HistoryPruned: pruned,
		Duration:      time.Since(start),
	}

	e.logger.WithFields(map[string]interface{}{
		"as_of":    date.Format("2006-01-02"),
		"scored":   updated,
		"pruned":   pruned,
		"duration": result.Duration,
	}).Info("Score calculation completed")

	return result, nil
}

// RetentionCutoff returns the date-only boundary of the history
// retention sweep. Rows dated strictly before it are deleted; a row
// dated exactly at the cutoff is retained.
func (e *Engine) RetentionCutoff() time.Time {
	return retentionCutoffAt(e.now())
}

// RetentionCutoff returns the retention boundary relative to now
func RetentionCutoff() time.Time {
	return retentionCutoffAt(time.Now())
}

func retentionCutoffAt(now time.Time) time.Time {
	cutoff := now.UTC().AddDate(0, 0, -HistoryRetentionDays)
	return time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
}
