package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

// Ranker re-derives each sector's company ranks from the current
// smoothed scores. Ranks are dense 1..N, ordered by smoothed score
// descending with market cap as the tie-break; only ranks that
// actually changed are written back.
type Ranker struct {
	store  contracts.RankStore
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(store contracts.RankStore, log *logger.Logger) *Ranker {
	return &Ranker{
		store:  store,
		logger: log.WithField("module", "ranking"),
	}
}

// AssignRanks orders standings by score descending, market cap
// descending, and assigns dense 1-based ranks. The sort is stable, so
// full ties keep their stored order rather than reshuffling.
func AssignRanks(standings []contracts.Standing) []contracts.RankedCompany {
	ordered := make([]contracts.Standing, len(standings))
	copy(ordered, standings)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].MarketCap > ordered[j].MarketCap
	})

	ranked := make([]contracts.RankedCompany, len(ordered))
	for i, s := range ordered {
		ranked[i] = contracts.RankedCompany{
			Ticker:  s.Ticker,
			Rank:    i + 1,
			OldRank: s.OldRank,
			Score:   s.Score,
		}
	}
	return ranked
}

// Run recomputes ranks for every sector and returns how many sectors
// had at least one rank change. It operates over all sectors using
// whatever smoothed scores currently exist, independent of any one
// scoring run's scope.
func (r *Ranker) Run(ctx context.Context) (int, error) {
	sectors, err := r.store.Sectors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sectors: %w", err)
	}

	updatedSectors := 0

	for _, sector := range sectors {
		standings, err := r.store.SectorStandings(ctx, sector.ID)
		if err != nil {
			return updatedSectors, fmt.Errorf("sector %s standings: %w", sector.ID, err)
		}
		if len(standings) == 0 {
			continue
		}

		ranked := AssignRanks(standings)

		anyChange := false
		for _, rc := range ranked {
			if rc.Rank != rc.OldRank {
				anyChange = true
				break
			}
		}
		if !anyChange {
			continue
		}

		for _, rc := range ranked {
			if rc.Rank == rc.OldRank {
				continue
			}
			if err := r.store.UpdateRank(ctx, sector.ID, rc.Ticker, rc.Rank); err != nil {
				return updatedSectors, fmt.Errorf("update rank %s/%s: %w", sector.ID, rc.Ticker, err)
			}
		}

		updatedSectors++
		r.logger.WithFields(map[string]interface{}{
			"sector": sector.Name,
		}).Info("Sector rankings updated")
	}

	r.logger.WithField("sectors_updated", updatedSectors).Info("Ranking completed")

	return updatedSectors, nil
}
