package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/internal/ingest"
	"github.com/wonny/hegemony/pkg/logger"
)

// Collector pulls the day's market data for the tracked universe
type Collector interface {
	Collect(ctx context.Context) (*ingest.Result, error)
}

// PipelineRunner scores and ranks the universe as one unit
type PipelineRunner interface {
	Run(ctx context.Context, asOf *time.Time) (*contracts.RunResult, error)
}

// Broadcaster pushes run summaries to connected feed clients
type Broadcaster interface {
	Broadcast(result *contracts.RunResult)
}

// DailyUpdateJob collects fresh market data and then re-scores and
// re-ranks every sector. Scheduled after the US market close.
type DailyUpdateJob struct {
	collector   Collector
	runner      PipelineRunner
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewDailyUpdateJob creates a new daily update job
func NewDailyUpdateJob(collector Collector, runner PipelineRunner, broadcaster Broadcaster, log *logger.Logger) *DailyUpdateJob {
	return &DailyUpdateJob{
		collector:   collector,
		runner:      runner,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Name returns the job name
func (j *DailyUpdateJob) Name() string {
	return "daily_update"
}

// Schedule returns the cron schedule, 21:30 UTC on weekdays
func (j *DailyUpdateJob) Schedule() string {
	return "0 30 21 * * MON-FRI"
}

// Run collects the day's data and runs the scoring pipeline
func (j *DailyUpdateJob) Run(ctx context.Context) error {
	collected, err := j.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	if collected.Total == 0 {
		j.logger.Warn("Nothing collected, skipping scoring run")
		return nil
	}

	result, err := j.runner.Run(ctx, nil)
	if err != nil {
		return fmt.Errorf("scoring run failed: %w", err)
	}

	if j.broadcaster != nil && !result.Skipped {
		j.broadcaster.Broadcast(result)
	}

	j.logger.WithFields(map[string]interface{}{
		"collected": collected.Succeeded,
		"scored":    result.Scored,
		"sectors":   result.SectorsRanked,
	}).Info("Daily update finished")

	return nil
}
