package ranking

import (
	"context"
	"fmt"

	"github.com/wonny/hegemony/internal/contracts"
)

// Repository implements contracts.RankStore over Postgres
type Repository struct {
	db contracts.DB
}

// NewRepository creates a new ranking repository
func NewRepository(db contracts.DB) *Repository {
	return &Repository{db: db}
}

// Sectors returns id and name of every sector in display order
func (r *Repository) Sectors(ctx context.Context) ([]contracts.Sector, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM sectors ORDER BY "order", id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	sectors := make([]contracts.Sector, 0)
	for rows.Next() {
		var s contracts.Sector
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sectors: %w", err)
	}

	return sectors, nil
}

// SectorStandings returns a sector's members with their stored rank,
// smoothed score, and latest market cap, missing values coalesced to
// zero, ordered score descending then market cap descending.
func (r *Repository) SectorStandings(ctx context.Context, sectorID string) ([]contracts.Standing, error) {
	query := `
		SELECT sc.ticker, sc.rank AS old_rank,
		       COALESCE(cs.smoothed_score, 0) AS score,
		       COALESCE(ds.market_cap, 0) AS mc
		FROM sector_companies sc
		LEFT JOIN company_scores cs ON sc.ticker = cs.ticker
		LEFT JOIN (
			SELECT ticker, market_cap
			FROM daily_snapshots
			WHERE date = (SELECT MAX(date) FROM daily_snapshots)
		) ds ON sc.ticker = ds.ticker
		WHERE sc.sector_id = $1
		ORDER BY score DESC, mc DESC
	`

	rows, err := r.db.Query(ctx, query, sectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector standings: %w", err)
	}
	defer rows.Close()

	standings := make([]contracts.Standing, 0)
	for rows.Next() {
		var s contracts.Standing
		if err := rows.Scan(&s.Ticker, &s.OldRank, &s.Score, &s.MarketCap); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}

	return standings, nil
}

// UpdateRank writes one (sector, ticker) rank
func (r *Repository) UpdateRank(ctx context.Context, sectorID, ticker string, rank int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sector_companies SET rank = $1 WHERE sector_id = $2 AND ticker = $3`,
		rank, sectorID, ticker,
	)
	if err != nil {
		return fmt.Errorf("failed to update rank: %w", err)
	}
	return nil
}
