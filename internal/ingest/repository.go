package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/hegemony/internal/contracts"
)

// Repository persists ingested market data. It owns daily_snapshots
// and the fundamental input columns of company_scores; the score
// output columns belong to the scoring engine.
type Repository struct {
	db contracts.DB
}

// NewRepository creates a new ingest repository
func NewRepository(db contracts.DB) *Repository {
	return &Repository{db: db}
}

// DistinctTickers returns every ticker that belongs to at least one
// sector, ordered for stable iteration.
func (r *Repository) DistinctTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT ticker FROM sector_companies ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ticker rows error: %w", err)
	}

	return tickers, nil
}

// UpsertSnapshot writes one (ticker, date) market data row
func (r *Repository) UpsertSnapshot(ctx context.Context, snap contracts.Snapshot) error {
	query := `
		INSERT INTO daily_snapshots (
			ticker, date, market_cap, price, price_change,
			week_52_high, week_52_low, day_high, day_low,
			volume, avg_volume, pe_ratio, peg_ratio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (ticker, date) DO UPDATE SET
			market_cap = EXCLUDED.market_cap,
			price = EXCLUDED.price,
			price_change = EXCLUDED.price_change,
			week_52_high = EXCLUDED.week_52_high,
			week_52_low = EXCLUDED.week_52_low,
			day_high = EXCLUDED.day_high,
			day_low = EXCLUDED.day_low,
			volume = EXCLUDED.volume,
			avg_volume = EXCLUDED.avg_volume,
			pe_ratio = EXCLUDED.pe_ratio,
			peg_ratio = EXCLUDED.peg_ratio
	`

	_, err := r.db.Exec(ctx, query,
		snap.Ticker, snap.Date, snap.MarketCap, snap.Price, snap.PriceChange,
		snap.Week52High, snap.Week52Low, snap.DayHigh, snap.DayLow,
		snap.Volume, snap.AvgVolume, snap.PERatio, snap.PEGRatio,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snap.Ticker, err)
	}

	return nil
}

// UpsertFundamentals writes a ticker's fundamental input columns.
// Existing score output columns on the same row are left untouched.
func (r *Repository) UpsertFundamentals(ctx context.Context, ticker string, f contracts.Fundamentals) error {
	query := `
		INSERT INTO company_scores (
			ticker, revenue_growth, earnings_growth, operating_margin,
			return_on_equity, recommendation_key, analyst_count,
			target_mean_price, free_cashflow, beta, debt_to_equity,
			metrics_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			revenue_growth = EXCLUDED.revenue_growth,
			earnings_growth = EXCLUDED.earnings_growth,
			operating_margin = EXCLUDED.operating_margin,
			return_on_equity = EXCLUDED.return_on_equity,
			recommendation_key = EXCLUDED.recommendation_key,
			analyst_count = EXCLUDED.analyst_count,
			target_mean_price = EXCLUDED.target_mean_price,
			free_cashflow = EXCLUDED.free_cashflow,
			beta = EXCLUDED.beta,
			debt_to_equity = EXCLUDED.debt_to_equity,
			metrics_updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		ticker, f.RevenueGrowth, f.EarningsGrowth, f.OperatingMargin,
		f.ReturnOnEquity, f.RecommendationKey, f.AnalystCount,
		f.TargetMeanPrice, f.FreeCashflow, f.Beta, f.DebtToEquity,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fundamentals for %s: %w", ticker, err)
	}

	return nil
}

// ExistingDates returns the snapshot dates already stored for a ticker
// within the lookback window, keyed for O(1) membership checks.
func (r *Repository) ExistingDates(ctx context.Context, ticker string, since time.Time) (map[string]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT date FROM daily_snapshots WHERE ticker = $1 AND date >= $2`,
		ticker, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing dates for %s: %w", ticker, err)
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates[d.Format("2006-01-02")] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("date rows error: %w", err)
	}

	return dates, nil
}
