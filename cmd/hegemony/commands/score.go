package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/pipeline"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "점수 계산 및 순위 갱신 실행",
	Long: `이미 저장된 스냅샷 데이터로 점수 계산과 섹터 순위 갱신을
실행합니다. 데이터 수집은 하지 않습니다.

날짜를 지정하지 않으면 가장 최근 스냅샷 날짜를 사용합니다.

Example:
  go run ./cmd/hegemony score
  go run ./cmd/hegemony score --date 2026-08-27`,
	RunE: runScore,
}

var scoreDate string

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "점수 계산 기준 날짜 (YYYY-MM-DD)")
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	var asOf *time.Time
	if scoreDate != "" {
		parsed, err := time.Parse("2006-01-02", scoreDate)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", scoreDate)
		}
		asOf = &parsed
	}

	result, err := pipeline.NewRunner(a.db.Pool, a.log).Run(context.Background(), asOf)
	if err != nil {
		return fmt.Errorf("scoring run failed: %w", err)
	}
	if result.Skipped {
		fmt.Println("No snapshot data, nothing to score")
		return nil
	}

	fmt.Printf("Date: %s\n", result.AsOf.Format("2006-01-02"))
	fmt.Printf("Scored %d companies, ranked %d sectors, pruned %d history rows (%s)\n",
		result.Scored, result.SectorsRanked, result.HistoryPruned,
		result.Duration.Round(time.Millisecond))
	return nil
}
