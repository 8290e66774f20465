package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/internal/ranking"
	"github.com/wonny/hegemony/internal/scoring"
	"github.com/wonny/hegemony/pkg/logger"
)

// TxBeginner is satisfied by *pgxpool.Pool and by pgxmock pools
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Runner executes one scoring and ranking pass as a single logical
// unit: scores, history, pruning, and rank updates commit together or
// not at all. Concurrent runs against the same database must be
// serialized by the caller.
type Runner struct {
	db     TxBeginner
	logger *logger.Logger
}

// NewRunner creates a new pipeline runner
func NewRunner(db TxBeginner, log *logger.Logger) *Runner {
	return &Runner{
		db:     db,
		logger: log.WithField("module", "pipeline"),
	}
}

// Run computes scores and ranks as of the given date (nil means the
// latest snapshot date). When no snapshot data exists at all the run
// is a reported no-op.
func (r *Runner) Run(ctx context.Context, asOf *time.Time) (*contracts.RunResult, error) {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	engine := scoring.NewEngine(scoring.NewRepository(tx), r.logger)
	result, err := engine.Run(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}

	if result.Skipped {
		// Nothing was written; the deferred rollback closes the tx
		return result, nil
	}

	ranker := ranking.NewRanker(ranking.NewRepository(tx), r.logger)
	updated, err := ranker.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	result.SectorsRanked = updated

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	result.Duration = time.Since(start)

	r.logger.WithFields(map[string]interface{}{
		"as_of":          result.AsOf.Format("2006-01-02"),
		"scored":         result.Scored,
		"sectors_ranked": result.SectorsRanked,
		"pruned":         result.HistoryPruned,
		"duration":       result.Duration,
	}).Info("Pipeline run completed")

	return result, nil
}
