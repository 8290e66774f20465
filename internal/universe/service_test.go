package universe

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hegemony/internal/external/yfin"
	"github.com/wonny/hegemony/pkg/logger"
)

type fakeProfileFetcher struct {
	profiles map[string]*yfin.Profile
	err      error
}

func (f *fakeProfileFetcher) FetchProfile(_ context.Context, ticker string) (*yfin.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[ticker]; ok {
		return p, nil
	}
	return nil, errors.New("unknown ticker")
}

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T, provider ProfileFetcher) (pgxmock.PgxPoolIface, *Service) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewService(mock, NewRepository(mock), provider, logger.NewNop())
}

func TestAddTicker_NewCompany(t *testing.T) {
	provider := &fakeProfileFetcher{profiles: map[string]*yfin.Profile{
		"NVDA": {Ticker: "NVDA", Name: "NVIDIA Corporation"},
	}}
	mock, svc := newTestService(t, provider)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WithArgs("semiconductors").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sector_companies`).
		WithArgs("semiconductors", "NVDA").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT name FROM companies`).
		WithArgs("NVDA").
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs("NVDA", "NVIDIA Corporation", (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT MAX\(rank\) FROM sector_companies`).
		WithArgs("semiconductors").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(intPtr(3)))
	mock.ExpectExec(`INSERT INTO sector_companies`).
		WithArgs("semiconductors", "NVDA", 4).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	member, err := svc.AddTicker(context.Background(), "semiconductors", "nvda")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", member.Ticker)
	assert.Equal(t, "NVIDIA Corporation", member.Name)
	assert.Equal(t, 4, member.Rank)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTicker_FirstMemberGetsRankOne(t *testing.T) {
	provider := &fakeProfileFetcher{profiles: map[string]*yfin.Profile{
		"NVDA": {Ticker: "NVDA", Name: "NVIDIA Corporation"},
	}}
	mock, svc := newTestService(t, provider)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT name FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT MAX\(rank\) FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow((*int)(nil)))
	mock.ExpectExec(`INSERT INTO sector_companies`).
		WithArgs("semiconductors", "NVDA", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	member, err := svc.AddTicker(context.Background(), "semiconductors", "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 1, member.Rank)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTicker_KnownCompanySkipsProvider(t *testing.T) {
	// No profiles configured: a provider hit would fail the test.
	mock, svc := newTestService(t, &fakeProfileFetcher{err: errors.New("should not be called")})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT name FROM companies`).
		WithArgs("AAPL").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Apple Inc."))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs("AAPL", "Apple Inc.", (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT MAX\(rank\) FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(intPtr(1)))
	mock.ExpectExec(`INSERT INTO sector_companies`).
		WithArgs("consumer-hardware", "AAPL", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	member, err := svc.AddTicker(context.Background(), "consumer-hardware", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", member.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTicker_DuplicateMembership(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.AddTicker(context.Background(), "semiconductors", "NVDA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in sector")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTicker_UnknownSector(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.AddTicker(context.Background(), "nope", "NVDA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sector")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTicker_ValidationFailure(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{err: errors.New("unknown ticker")})

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sectors`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM sector_companies`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT name FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	_, err := svc.AddTicker(context.Background(), "semiconductors", "ZZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker validation failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveTicker_LastMembershipDeletesData(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{})

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sector_companies WHERE sector_id = \$1 AND ticker = \$2`).
		WithArgs("semiconductors", "NVDA").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`UPDATE sector_companies sc SET rank = ranked.new_rank`).
		WithArgs("semiconductors").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sector_companies WHERE ticker = \$1`).
		WithArgs("NVDA").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM score_history`).WithArgs("NVDA").
		WillReturnResult(pgxmock.NewResult("DELETE", 30))
	mock.ExpectExec(`DELETE FROM company_scores`).WithArgs("NVDA").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM daily_snapshots`).WithArgs("NVDA").
		WillReturnResult(pgxmock.NewResult("DELETE", 90))
	mock.ExpectExec(`DELETE FROM companies`).WithArgs("NVDA").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	require.NoError(t, svc.RemoveTicker(context.Background(), "semiconductors", "NVDA"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveTicker_OtherMembershipsKeepData(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{})

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sector_companies`).
		WithArgs("cloud", "MSFT").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`UPDATE sector_companies sc SET rank = ranked.new_rank`).
		WithArgs("cloud").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sector_companies`).
		WithArgs("MSFT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()
	mock.ExpectRollback()

	require.NoError(t, svc.RemoveTicker(context.Background(), "cloud", "MSFT"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveTicker_NotAMember(t *testing.T) {
	mock, svc := newTestService(t, &fakeProfileFetcher{})

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sector_companies`).
		WithArgs("cloud", "GHOST").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := svc.RemoveTicker(context.Background(), "cloud", "GHOST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in sector")
	require.NoError(t, mock.ExpectationsWereMet())
}
