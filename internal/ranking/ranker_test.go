package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

type rankWrite struct {
	sectorID string
	ticker   string
	rank     int
}

// fakeRankStore is an in-memory contracts.RankStore
type fakeRankStore struct {
	sectors   []contracts.Sector
	standings map[string][]contracts.Standing
	writes    []rankWrite
}

func (s *fakeRankStore) Sectors(ctx context.Context) ([]contracts.Sector, error) {
	return s.sectors, nil
}

func (s *fakeRankStore) SectorStandings(ctx context.Context, sectorID string) ([]contracts.Standing, error) {
	return s.standings[sectorID], nil
}

func (s *fakeRankStore) UpdateRank(ctx context.Context, sectorID, ticker string, rank int) error {
	s.writes = append(s.writes, rankWrite{sectorID, ticker, rank})
	return nil
}

func TestAssignRanks_TieBreakByMarketCap(t *testing.T) {
	standings := []contracts.Standing{
		// Stored order deliberately puts the smaller-cap company first
		{Ticker: "A", OldRank: 1, Score: 80, MarketCap: 100},
		{Ticker: "B", OldRank: 2, Score: 80, MarketCap: 200},
		{Ticker: "C", OldRank: 3, Score: 60, MarketCap: 50},
	}

	ranked := AssignRanks(standings)
	require.Len(t, ranked, 3)

	// Tie on score broken strictly by market cap, never by input order
	assert.Equal(t, "B", ranked[0].Ticker)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "A", ranked[1].Ticker)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "C", ranked[2].Ticker)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestAssignRanks_DenseAndComplete(t *testing.T) {
	standings := []contracts.Standing{
		{Ticker: "A", Score: 10},
		{Ticker: "B", Score: 30},
		{Ticker: "C", Score: 20},
		{Ticker: "D", Score: 0},
	}

	ranked := AssignRanks(standings)

	seen := make(map[int]bool)
	for _, rc := range ranked {
		seen[rc.Rank] = true
	}
	for want := 1; want <= len(standings); want++ {
		assert.True(t, seen[want], "rank %d missing", want)
	}
}

func TestRanker_WritesOnlyChangedRanks(t *testing.T) {
	store := &fakeRankStore{
		sectors: []contracts.Sector{{ID: "cloud", Name: "Cloud"}},
		standings: map[string][]contracts.Standing{
			"cloud": {
				{Ticker: "A", OldRank: 1, Score: 90, MarketCap: 500},
				{Ticker: "B", OldRank: 3, Score: 80, MarketCap: 400}, // was 3, now 2
				{Ticker: "C", OldRank: 2, Score: 70, MarketCap: 300}, // was 2, now 3
			},
		},
	}

	updated, err := NewRanker(store, logger.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, updated)
	// A kept rank 1 and must not be rewritten
	assert.ElementsMatch(t, []rankWrite{
		{"cloud", "B", 2},
		{"cloud", "C", 3},
	}, store.writes)
}

func TestRanker_UnchangedSectorNotCounted(t *testing.T) {
	store := &fakeRankStore{
		sectors: []contracts.Sector{
			{ID: "stable", Name: "Stable"},
			{ID: "moving", Name: "Moving"},
		},
		standings: map[string][]contracts.Standing{
			"stable": {
				{Ticker: "A", OldRank: 1, Score: 90},
				{Ticker: "B", OldRank: 2, Score: 80},
			},
			"moving": {
				{Ticker: "X", OldRank: 2, Score: 90},
				{Ticker: "Y", OldRank: 1, Score: 80},
			},
		},
	}

	updated, err := NewRanker(store, logger.NewNop()).Run(context.Background())
	require.NoError(t, err)

	// Zero rank rows written for the stable sector, and it is not
	// counted as updated
	assert.Equal(t, 1, updated)
	assert.ElementsMatch(t, []rankWrite{
		{"moving", "X", 1},
		{"moving", "Y", 2},
	}, store.writes)
}

func TestRanker_EmptySectorSkipped(t *testing.T) {
	store := &fakeRankStore{
		sectors:   []contracts.Sector{{ID: "empty", Name: "Empty"}},
		standings: map[string][]contracts.Standing{},
	}

	updated, err := NewRanker(store, logger.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Empty(t, store.writes)
}
