package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/internal/external/yfin"
	"github.com/wonny/hegemony/pkg/logger"
)

// Member is one sector membership with display fields
type Member struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Rank   int    `json:"rank"`
}

// ProfileFetcher validates a ticker against the market data provider
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, ticker string) (*yfin.Profile, error)
}

// TxBeginner opens database transactions
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service is the universe admin surface: listing sectors and adding or
// removing tracked tickers. Mutations run inside one transaction so a
// half-applied add or remove never becomes visible.
type Service struct {
	db       TxBeginner
	repo     *Repository
	provider ProfileFetcher
	logger   *logger.Logger
}

// NewService creates a new universe admin service
func NewService(db TxBeginner, repo *Repository, provider ProfileFetcher, log *logger.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		provider: provider,
		logger:   log.WithField("module", "universe"),
	}
}

// ListSectors returns all sectors in display order
func (s *Service) ListSectors(ctx context.Context) ([]contracts.Sector, error) {
	return s.repo.Sectors(ctx)
}

// ListMembers returns a sector's members in rank order
func (s *Service) ListMembers(ctx context.Context, sectorID string) ([]Member, error) {
	exists, err := s.repo.SectorExists(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("unknown sector: %s", sectorID)
	}
	return s.repo.SectorMembers(ctx, sectorID)
}

// AddTicker validates a ticker against the provider and adds it to a
// sector at the bottom rank. The company record is created on first
// membership anywhere.
func (s *Service) AddTicker(ctx context.Context, sectorID, ticker string) (*Member, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker must not be empty")
	}

	exists, err := s.repo.SectorExists(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("unknown sector: %s", sectorID)
	}

	already, err := s.repo.HasMembership(ctx, sectorID, ticker)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("%s is already in sector %s", ticker, sectorID)
	}

	// Prefer the name we already track; hit the provider only for
	// tickers we have never seen.
	name, err := s.repo.CompanyName(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if name == nil {
		profile, err := s.provider.FetchProfile(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("ticker validation failed: %w", err)
		}
		name = &profile.Name
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := NewRepository(tx)

	if err := txRepo.UpsertCompany(ctx, contracts.Company{Ticker: ticker, Name: *name}); err != nil {
		return nil, err
	}

	rank, err := txRepo.NextRank(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if err := txRepo.AddMembership(ctx, sectorID, ticker, rank); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"sector": sectorID,
		"rank":   rank,
	}).Info("Ticker added to sector")

	return &Member{Ticker: ticker, Name: *name, Rank: rank}, nil
}

// RemoveTicker drops a sector membership, closes the rank gap, and
// deletes the company's data entirely once no sector tracks it.
func (s *Service) RemoveTicker(ctx context.Context, sectorID, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txRepo := NewRepository(tx)

	removed, err := txRepo.RemoveMembership(ctx, sectorID, ticker)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s is not in sector %s", ticker, sectorID)
	}

	if err := txRepo.ResequenceRanks(ctx, sectorID); err != nil {
		return err
	}

	remaining, err := txRepo.MembershipCount(ctx, ticker)
	if err != nil {
		return err
	}
	orphaned := remaining == 0
	if orphaned {
		if err := txRepo.DeleteCompanyData(ctx, ticker); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"sector":   sectorID,
		"orphaned": orphaned,
	}).Info("Ticker removed from sector")

	return nil
}
