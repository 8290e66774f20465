package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hegemony/pkg/logger"
)

func TestRunner_NoSnapshotRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT MAX\(date\) FROM daily_snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow((*time.Time)(nil)))
	mock.ExpectRollback()

	runner := NewRunner(mock, logger.NewNop())
	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_SingleTickerRunCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()

	// Scoring phase
	mock.ExpectQuery(`SELECT MAX\(date\) FROM daily_snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(&date))
	mock.ExpectQuery(`SELECT id FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("cloud"))
	mock.ExpectQuery(`FROM sector_companies sc`).
		WithArgs(date, "cloud").
		WillReturnRows(pgxmock.NewRows([]string{
			"ticker", "market_cap", "volume", "avg_volume", "price",
			"revenue_growth", "earnings_growth", "operating_margin",
			"return_on_equity", "recommendation_key", "analyst_count",
			"target_mean_price", "free_cashflow", "beta", "debt_to_equity",
		}).AddRow("MSFT", (*int64)(nil), (*int64)(nil), (*int64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*string)(nil), (*int)(nil),
			(*float64)(nil), (*int64)(nil), (*float64)(nil), (*float64)(nil)))
	mock.ExpectQuery(`SELECT smoothed_score FROM company_scores`).
		WithArgs("MSFT").
		WillReturnRows(pgxmock.NewRows([]string{"smoothed_score"}).AddRow((*float64)(nil)))
	// All-null row: every sub-score at half credit, raw total 50,
	// first observation seeds smoothed with the raw total
	mock.ExpectExec(`INSERT INTO company_scores`).
		WithArgs("MSFT", 17.5, 15.0, 10.0, 7.5, 50.0, 50.0, 0.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO score_history`).
		WithArgs("MSFT", date, 50.0, 50.0, 17.5, 15.0, 10.0, 7.5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM score_history`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	// Ranking phase
	mock.ExpectQuery(`SELECT id, name FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow("cloud", "Cloud"))
	mock.ExpectQuery(`FROM sector_companies sc`).
		WithArgs("cloud").
		WillReturnRows(pgxmock.NewRows([]string{"ticker", "old_rank", "score", "mc"}).
			AddRow("MSFT", 2, 50.0, int64(0)))
	mock.ExpectExec(`UPDATE sector_companies SET rank`).
		WithArgs(1, "cloud", "MSFT").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	runner := NewRunner(mock, logger.NewNop())
	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Scored)
	assert.Equal(t, 1, result.SectorsRanked)
	require.NoError(t, mock.ExpectationsWereMet())
}
