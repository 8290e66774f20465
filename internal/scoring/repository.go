package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hegemony/internal/contracts"
)

// Repository implements contracts.ScoreStore over Postgres. It runs on
// whatever contracts.DB it is given, so the pipeline can scope a whole
// run to one transaction.
type Repository struct {
	db contracts.DB
}

// NewRepository creates a new scoring repository
func NewRepository(db contracts.DB) *Repository {
	return &Repository{db: db}
}

// LatestSnapshotDate returns the most recent snapshot date, or nil
// when daily_snapshots is empty.
func (r *Repository) LatestSnapshotDate(ctx context.Context) (*time.Time, error) {
	var date *time.Time
	err := r.db.QueryRow(ctx, `SELECT MAX(date) FROM daily_snapshots`).Scan(&date)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot date: %w", err)
	}
	return date, nil
}

// SectorIDs returns all sector identifiers in display order
func (r *Repository) SectorIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM sectors ORDER BY "order", id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan sector id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sectors: %w", err)
	}

	return ids, nil
}

// SectorRows joins a sector's members against the given date's
// snapshots and current fundamentals. Outer joins: a member without a
// snapshot or fundamentals row still comes back, with nil fields.
func (r *Repository) SectorRows(ctx context.Context, sectorID string, date time.Time) ([]contracts.CompanyRow, error) {
	query := `
		SELECT sc.ticker, ds.market_cap, ds.volume, ds.avg_volume, ds.price,
		       cs.revenue_growth, cs.earnings_growth, cs.operating_margin,
		       cs.return_on_equity, cs.recommendation_key, cs.analyst_count,
		       cs.target_mean_price, cs.free_cashflow, cs.beta, cs.debt_to_equity
		FROM sector_companies sc
		LEFT JOIN daily_snapshots ds ON sc.ticker = ds.ticker AND ds.date = $1
		LEFT JOIN company_scores cs ON sc.ticker = cs.ticker
		WHERE sc.sector_id = $2
		ORDER BY sc.rank, sc.ticker
	`

	rows, err := r.db.Query(ctx, query, date, sectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector rows: %w", err)
	}
	defer rows.Close()

	result := make([]contracts.CompanyRow, 0)
	for rows.Next() {
		var row contracts.CompanyRow
		err := rows.Scan(
			&row.Ticker, &row.MarketCap, &row.Volume, &row.AvgVolume, &row.Price,
			&row.RevenueGrowth, &row.EarningsGrowth, &row.OperatingMargin,
			&row.ReturnOnEquity, &row.RecommendationKey, &row.AnalystCount,
			&row.TargetMeanPrice, &row.FreeCashflow, &row.Beta, &row.DebtToEquity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sector row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sector rows: %w", err)
	}

	return result, nil
}

// SmoothedScore returns the persisted smoothed score for a ticker, or
// nil when the ticker has never been scored.
func (r *Repository) SmoothedScore(ctx context.Context, ticker string) (*float64, error) {
	var smoothed *float64
	err := r.db.QueryRow(ctx,
		`SELECT smoothed_score FROM company_scores WHERE ticker = $1`, ticker,
	).Scan(&smoothed)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query smoothed score: %w", err)
	}

	return smoothed, nil
}

// SaveScores upserts the engine-owned output columns of a ticker's
// score record. The fundamental input columns belong to the ingestion
// side and are left untouched.
func (r *Repository) SaveScores(ctx context.Context, ticker string, scores contracts.ScoreSet, smoothed float64) error {
	query := `
		INSERT INTO company_scores (
			ticker, scale_score, growth_score, profitability_score, sentiment_score,
			raw_total_score, smoothed_score, data_quality, score_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			scale_score = EXCLUDED.scale_score,
			growth_score = EXCLUDED.growth_score,
			profitability_score = EXCLUDED.profitability_score,
			sentiment_score = EXCLUDED.sentiment_score,
			raw_total_score = EXCLUDED.raw_total_score,
			smoothed_score = EXCLUDED.smoothed_score,
			data_quality = EXCLUDED.data_quality,
			score_updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		ticker, scores.Scale, scores.Growth, scores.Profitability, scores.Sentiment,
		scores.RawTotal, smoothed, scores.DataQuality,
	)
	if err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}

	return nil
}

// SaveHistory upserts one per-(ticker,date) history row. Re-running
// for the same date overwrites that date's row rather than
// duplicating.
func (r *Repository) SaveHistory(ctx context.Context, point contracts.HistoryPoint) error {
	query := `
		INSERT INTO score_history (
			ticker, date, raw_total_score, smoothed_score,
			scale_score, growth_score, profitability_score, sentiment_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, date) DO UPDATE SET
			raw_total_score = EXCLUDED.raw_total_score,
			smoothed_score = EXCLUDED.smoothed_score,
			scale_score = EXCLUDED.scale_score,
			growth_score = EXCLUDED.growth_score,
			profitability_score = EXCLUDED.profitability_score,
			sentiment_score = EXCLUDED.sentiment_score
	`

	_, err := r.db.Exec(ctx, query,
		point.Ticker, point.Date, point.RawTotal, point.Smoothed,
		point.Scale, point.Growth, point.Profitability, point.Sentiment,
	)
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	return nil
}

// PruneHistory deletes history rows dated strictly before cutoff.
// The sweep is unconditional, not scoped to the tickers touched in
// this run.
func (r *Repository) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM score_history WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return tag.RowsAffected(), nil
}
