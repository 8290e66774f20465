package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/internal/scoring"
	"github.com/wonny/hegemony/pkg/database"
	"github.com/wonny/hegemony/pkg/logger"
)

// MaintenanceJob trims snapshot rows that fell out of the retention
// window and reports connection pool health. History rows are pruned
// by the scoring pipeline itself; this keeps daily_snapshots in step.
type MaintenanceJob struct {
	db     contracts.DB
	pool   *database.DB
	logger *logger.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db contracts.DB, pool *database.DB, log *logger.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:     db,
		pool:   pool,
		logger: log,
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Schedule returns the cron schedule, Sunday 03:00 UTC
func (j *MaintenanceJob) Schedule() string {
	return "0 0 3 * * SUN"
}

// Run prunes expired snapshots and logs pool statistics
func (j *MaintenanceJob) Run(ctx context.Context) error {
	cutoff := scoring.RetentionCutoff()

	tag, err := j.db.Exec(ctx,
		`DELETE FROM daily_snapshots WHERE date < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	fields := map[string]interface{}{
		"cutoff": cutoff.Format("2006-01-02"),
		"pruned": tag.RowsAffected(),
	}
	if j.pool != nil {
		stats := j.pool.Stats()
		fields["pool_total"] = stats.TotalConns
		fields["pool_idle"] = stats.IdleConns
	}
	j.logger.WithFields(fields).Info("Maintenance finished")

	return nil
}
