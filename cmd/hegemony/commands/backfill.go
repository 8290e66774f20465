package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/ingest"
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "과거 스냅샷 데이터 채우기",
	Long: `차트 종가 데이터로 빠진 과거 스냅샷을 채웁니다.
과거 시가총액은 종가 x 현재 발행주식수로 근사합니다.

이미 저장된 날짜는 덮어쓰지 않습니다.

Example:
  go run ./cmd/hegemony backfill
  go run ./cmd/hegemony backfill --days 30`,
	RunE: runBackfill,
}

var backfillDays int

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().IntVar(&backfillDays, "days", 90, "채울 기간 (일)")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	redisClient, err := a.redisClient()
	if err != nil {
		return err
	}
	defer redisClient.Close()

	backfiller := ingest.NewBackfiller(
		ingest.NewRepository(a.db.Pool), a.provider(redisClient),
		a.cfg.Provider.RequestsPerMin, a.log,
	)

	result, err := backfiller.Run(context.Background(), backfillDays)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Printf("Backfilled %d tickers: %d inserted, %d already present, %d failed\n",
		result.Tickers, result.Inserted, result.Skipped, result.Failed)
	return nil
}
