package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

type savedScore struct {
	scores   contracts.ScoreSet
	smoothed float64
}

// fakeStore is an in-memory contracts.ScoreStore
type fakeStore struct {
	latest   *time.Time
	sectors  []string
	rows     map[string][]contracts.CompanyRow
	smoothed map[string]float64

	saved       map[string]savedScore
	history     map[string]contracts.HistoryPoint
	pruneCutoff *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:     make(map[string][]contracts.CompanyRow),
		smoothed: make(map[string]float64),
		saved:    make(map[string]savedScore),
		history:  make(map[string]contracts.HistoryPoint),
	}
}

func (s *fakeStore) LatestSnapshotDate(ctx context.Context) (*time.Time, error) {
	return s.latest, nil
}

func (s *fakeStore) SectorIDs(ctx context.Context) ([]string, error) {
	return s.sectors, nil
}

func (s *fakeStore) SectorRows(ctx context.Context, sectorID string, date time.Time) ([]contracts.CompanyRow, error) {
	return s.rows[sectorID], nil
}

func (s *fakeStore) SmoothedScore(ctx context.Context, ticker string) (*float64, error) {
	if v, ok := s.smoothed[ticker]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *fakeStore) SaveScores(ctx context.Context, ticker string, scores contracts.ScoreSet, smoothed float64) error {
	s.saved[ticker] = savedScore{scores: scores, smoothed: smoothed}
	return nil
}

func (s *fakeStore) SaveHistory(ctx context.Context, point contracts.HistoryPoint) error {
	s.history[point.Ticker+"|"+point.Date.Format("2006-01-02")] = point
	return nil
}

func (s *fakeStore) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	s.pruneCutoff = &cutoff
	return 0, nil
}

func testEngine(store contracts.ScoreStore) *Engine {
	return NewEngine(store, logger.NewNop())
}

func TestEngine_NoSnapshotIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.sectors = []string{"cloud"}

	result, err := testEngine(store).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Empty(t, store.saved)
	assert.Empty(t, store.history)
	assert.Nil(t, store.pruneCutoff)
}

func TestEngine_BestSectorContextWins(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.latest = &date
	store.sectors = []string{"niche", "crowded"}

	// In "niche" the ticker dominates; in "crowded" it is a minnow.
	dominant := contracts.CompanyRow{Ticker: "ACME", MarketCap: i64(900), Volume: i64(100), AvgVolume: i64(100)}
	store.rows["niche"] = []contracts.CompanyRow{
		dominant,
		{Ticker: "TINY", MarketCap: i64(100)},
	}
	minnow := contracts.CompanyRow{Ticker: "ACME", MarketCap: i64(900), Volume: i64(100), AvgVolume: i64(100)}
	store.rows["crowded"] = []contracts.CompanyRow{
		minnow,
		{Ticker: "GIANT", MarketCap: i64(99100)},
	}

	result, err := testEngine(store).Run(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, result.Skipped)
	assert.Equal(t, date, result.AsOf)
	assert.Equal(t, 3, result.Scored)

	nicheEval := Evaluate(dominant, 1000)
	crowdedEval := Evaluate(minnow, 100000)
	require.Greater(t, nicheEval.RawTotal, crowdedEval.RawTotal)

	// The niche evaluation is what gets persisted; the crowded one is
	// discarded entirely, not averaged.
	got := store.saved["ACME"]
	assert.Equal(t, nicheEval, got.scores)
}

func TestEngine_SmoothingSeedAndBlend(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.latest = &date
	store.sectors = []string{"ai"}
	store.rows["ai"] = []contracts.CompanyRow{
		{Ticker: "NEW"},
		{Ticker: "OLD"},
	}
	store.smoothed["OLD"] = 50.0

	_, err := testEngine(store).Run(context.Background(), nil)
	require.NoError(t, err)

	// Both rows are all-null, so every dimension falls back to half
	// credit and raw total is exactly 50.
	newSaved := store.saved["NEW"]
	assert.InDelta(t, 50.0, newSaved.scores.RawTotal, 1e-9)
	// First observation seeds with the raw total, no blending
	assert.InDelta(t, newSaved.scores.RawTotal, newSaved.smoothed, 1e-9)

	oldSaved := store.saved["OLD"]
	want := EMAAlpha*oldSaved.scores.RawTotal + (1-EMAAlpha)*50.0
	assert.InDelta(t, want, oldSaved.smoothed, 1e-9)
}

func TestEngine_HistoryRowMatchesScores(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.latest = &date
	store.sectors = []string{"ai"}
	store.rows["ai"] = []contracts.CompanyRow{{Ticker: "ACME", MarketCap: i64(100)}}

	_, err := testEngine(store).Run(context.Background(), nil)
	require.NoError(t, err)

	point, ok := store.history["ACME|2026-08-28"]
	require.True(t, ok)

	saved := store.saved["ACME"]
	assert.Equal(t, saved.scores.RawTotal, point.RawTotal)
	assert.Equal(t, saved.smoothed, point.Smoothed)
	assert.Equal(t, saved.scores.Scale, point.Scale)
	assert.Equal(t, saved.scores.Growth, point.Growth)
	assert.Equal(t, saved.scores.Profitability, point.Profitability)
	assert.Equal(t, saved.scores.Sentiment, point.Sentiment)
}

func TestEngine_ExplicitAsOfDate(t *testing.T) {
	store := newFakeStore()
	store.sectors = []string{"ai"}
	store.rows["ai"] = []contracts.CompanyRow{{Ticker: "ACME"}}

	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	result, err := testEngine(store).Run(context.Background(), &asOf)
	require.NoError(t, err)

	// No LatestSnapshotDate lookup needed when the date is given
	assert.Equal(t, asOf, result.AsOf)
	_, ok := store.history["ACME|2026-08-01"]
	assert.True(t, ok)
}

func TestEngine_RetentionCutoff(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.latest = &date
	store.sectors = []string{}

	engine := testEngine(store)
	engine.now = func() time.Time {
		return time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	}

	_, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)

	require.NotNil(t, store.pruneCutoff)
	// Date-only boundary, exactly 90 days back
	assert.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), *store.pruneCutoff)
}
