package contracts

import (
	"context"
	"time"
)

// ScoreStore is the persistence contract of the scoring engine.
// Reads are per-sector joins; writes are per-ticker and independently
// retryable by the caller.
type ScoreStore interface {
	// LatestSnapshotDate returns the most recent date present in
	// daily_snapshots, or nil when no snapshot exists at all.
	LatestSnapshotDate(ctx context.Context) (*time.Time, error)

	// SectorIDs returns all sector identifiers
	SectorIDs(ctx context.Context) ([]string, error)

	// SectorRows joins a sector's members against the given date's
	// snapshots and the current fundamentals (outer join; absent rows
	// yield nil fields).
	SectorRows(ctx context.Context, sectorID string, date time.Time) ([]CompanyRow, error)

	// SmoothedScore returns the currently persisted smoothed score for
	// a ticker, or nil when the ticker has never been scored.
	SmoothedScore(ctx context.Context, ticker string) (*float64, error)

	// SaveScores upserts the engine-owned output columns of the
	// ticker's score record.
	SaveScores(ctx context.Context, ticker string, scores ScoreSet, smoothed float64) error

	// SaveHistory upserts one per-(ticker,date) history row
	SaveHistory(ctx context.Context, point HistoryPoint) error

	// PruneHistory deletes history rows dated strictly before cutoff
	// and returns the number of rows removed.
	PruneHistory(ctx context.Context, cutoff time.Time) (int64, error)
}

// RankStore is the persistence contract of the ranking engine
type RankStore interface {
	// Sectors returns id and name of every sector
	Sectors(ctx context.Context) ([]Sector, error)

	// SectorStandings returns a sector's members ordered by smoothed
	// score descending, market cap descending, with missing values
	// coalesced to zero.
	SectorStandings(ctx context.Context, sectorID string) ([]Standing, error)

	// UpdateRank writes one (sector, ticker) rank
	UpdateRank(ctx context.Context, sectorID, ticker string, rank int) error
}
