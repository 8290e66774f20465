package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/ingest"
	"github.com/wonny/hegemony/internal/pipeline"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "시장 데이터 수집 후 점수 재계산",
	Long: `전체 유니버스의 당일 시세와 펀더멘털을 수집하고,
이어서 점수 계산과 섹터 순위 갱신을 실행합니다.

티커의 절반 이상 수집에 실패하면 점수 계산 없이 중단됩니다.

Example:
  go run ./cmd/hegemony update
  go run ./cmd/hegemony update --collect-only`,
	RunE: runUpdate,
}

var collectOnly bool

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&collectOnly, "collect-only", false, "수집만 하고 점수 계산은 생략")
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()

	collector := ingest.NewCollector(
		ingest.NewRepository(a.db.Pool), a.provider(redisClient),
		a.cfg.Provider.RequestsPerMin, a.log,
	)

	collected, err := collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	fmt.Printf("Collected %d/%d tickers (%d failed)\n",
		collected.Succeeded, collected.Total, collected.Failed)

	if collectOnly {
		return nil
	}

	result, err := pipeline.NewRunner(a.db.Pool, a.log).Run(ctx, nil)
	if err != nil {
		return fmt.Errorf("scoring run failed: %w", err)
	}
	if result.Skipped {
		fmt.Println("No snapshot data, scoring skipped")
		return nil
	}

	fmt.Printf("Scored %d companies, ranked %d sectors in %s\n",
		result.Scored, result.SectorsRanked, result.Duration.Round(time.Millisecond))
	return nil
}
