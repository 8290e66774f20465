package ranking

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SectorStandings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	rows := pgxmock.NewRows([]string{"ticker", "old_rank", "score", "mc"}).
		AddRow("MSFT", 1, 85.5, int64(3_200_000_000_000)).
		AddRow("GOOG", 2, 0.0, int64(0))

	mock.ExpectQuery(`FROM sector_companies sc`).
		WithArgs("cloud").
		WillReturnRows(rows)

	standings, err := repo.SectorStandings(context.Background(), "cloud")
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "MSFT", standings[0].Ticker)
	assert.Equal(t, 85.5, standings[0].Score)
	// COALESCE gives zeros for never-scored members
	assert.Equal(t, 0.0, standings[1].Score)
	assert.Equal(t, int64(0), standings[1].MarketCap)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateRank(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec(`UPDATE sector_companies SET rank`).
		WithArgs(2, "cloud", "GOOG").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateRank(context.Background(), "cloud", "GOOG", 2))
	require.NoError(t, mock.ExpectationsWereMet())
}
