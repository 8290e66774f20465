package universe

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hegemony/internal/contracts"
)

// Repository manages the tracked universe: sectors, companies, and
// sector memberships.
type Repository struct {
	db contracts.DB
}

// NewRepository creates a new universe repository
func NewRepository(db contracts.DB) *Repository {
	return &Repository{db: db}
}

// Sectors returns all sectors in display order
func (r *Repository) Sectors(ctx context.Context) ([]contracts.Sector, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, category_id, name, name_en, "order", description
		FROM sectors
		ORDER BY "order", id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	sectors := make([]contracts.Sector, 0)
	for rows.Next() {
		var s contracts.Sector
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.NameEn, &s.Order, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sector rows error: %w", err)
	}

	return sectors, nil
}

// SectorExists reports whether a sector id is known
func (r *Repository) SectorExists(ctx context.Context, sectorID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sectors WHERE id = $1)`, sectorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sector %s: %w", sectorID, err)
	}
	return exists, nil
}

// HasMembership reports whether a ticker already belongs to a sector
func (r *Repository) HasMembership(ctx context.Context, sectorID, ticker string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sector_companies WHERE sector_id = $1 AND ticker = $2)`,
		sectorID, ticker,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// UpsertCompany inserts a company or refreshes its display name
func (r *Repository) UpsertCompany(ctx context.Context, company contracts.Company) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO companies (ticker, name, name_ko, logo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE SET name = EXCLUDED.name
	`, company.Ticker, company.Name, company.NameKo, company.LogoURL)
	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", company.Ticker, err)
	}
	return nil
}

// NextRank returns the rank a new member should receive, one past the
// sector's current maximum.
func (r *Repository) NextRank(ctx context.Context, sectorID string) (int, error) {
	var max *int
	err := r.db.QueryRow(ctx,
		`SELECT MAX(rank) FROM sector_companies WHERE sector_id = $1`, sectorID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query max rank: %w", err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// AddMembership inserts a sector membership with the given rank
func (r *Repository) AddMembership(ctx context.Context, sectorID, ticker string, rank int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sector_companies (sector_id, ticker, rank)
		VALUES ($1, $2, $3)
	`, sectorID, ticker, rank)
	if err != nil {
		return fmt.Errorf("failed to add %s to sector %s: %w", ticker, sectorID, err)
	}
	return nil
}

// RemoveMembership deletes one sector membership and reports whether a
// row was actually removed.
func (r *Repository) RemoveMembership(ctx context.Context, sectorID, ticker string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sector_companies WHERE sector_id = $1 AND ticker = $2`,
		sectorID, ticker)
	if err != nil {
		return false, fmt.Errorf("failed to remove membership: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ResequenceRanks closes rank gaps in a sector after a removal,
// keeping ranks dense from 1 in the existing order.
func (r *Repository) ResequenceRanks(ctx context.Context, sectorID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sector_companies sc SET rank = ranked.new_rank
		FROM (
			SELECT ticker, ROW_NUMBER() OVER (ORDER BY rank, ticker) AS new_rank
			FROM sector_companies
			WHERE sector_id = $1
		) ranked
		WHERE sc.sector_id = $1 AND sc.ticker = ranked.ticker AND sc.rank <> ranked.new_rank
	`, sectorID)
	if err != nil {
		return fmt.Errorf("failed to resequence ranks for %s: %w", sectorID, err)
	}
	return nil
}

// MembershipCount returns how many sectors still track a ticker
func (r *Repository) MembershipCount(ctx context.Context, ticker string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sector_companies WHERE ticker = $1`, ticker,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// DeleteCompanyData removes a company and all of its stored data.
// Called only once the last membership is gone.
func (r *Repository) DeleteCompanyData(ctx context.Context, ticker string) error {
	statements := []string{
		`DELETE FROM score_history WHERE ticker = $1`,
		`DELETE FROM company_scores WHERE ticker = $1`,
		`DELETE FROM daily_snapshots WHERE ticker = $1`,
		`DELETE FROM companies WHERE ticker = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt, ticker); err != nil {
			return fmt.Errorf("failed to delete data for %s: %w", ticker, err)
		}
	}
	return nil
}

// SectorMembers returns a sector's members with company names, in rank
// order.
func (r *Repository) SectorMembers(ctx context.Context, sectorID string) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sc.ticker, c.name, sc.rank
		FROM sector_companies sc
		JOIN companies c ON sc.ticker = c.ticker
		WHERE sc.sector_id = $1
		ORDER BY sc.rank
	`, sectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of %s: %w", sectorID, err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.Ticker, &m.Name, &m.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("member rows error: %w", err)
	}

	return members, nil
}

// CompanyName returns a tracked company's display name, or nil when
// the ticker is unknown.
func (r *Repository) CompanyName(ctx context.Context, ticker string) (*string, error) {
	var name string
	err := r.db.QueryRow(ctx,
		`SELECT name FROM companies WHERE ticker = $1`, ticker,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query company %s: %w", ticker, err)
	}
	return &name, nil
}
