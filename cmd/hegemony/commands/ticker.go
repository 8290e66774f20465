package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/ingest"
	"github.com/wonny/hegemony/internal/universe"
)

// tickerCmd represents the ticker command group
var tickerCmd = &cobra.Command{
	Use:   "ticker",
	Short: "추적 종목 관리",
	Long: `섹터별 추적 종목을 관리합니다.

Example:
  go run ./cmd/hegemony ticker list semiconductors
  go run ./cmd/hegemony ticker add semiconductors NVDA
  go run ./cmd/hegemony ticker remove semiconductors NVDA`,
}

// tickerListCmd lists a sector's members, or all sectors with no args
var tickerListCmd = &cobra.Command{
	Use:   "list [sector]",
	Short: "섹터 구성 종목 조회",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTickerList,
}

// tickerAddCmd adds a ticker to a sector
var tickerAddCmd = &cobra.Command{
	Use:   "add <sector> <ticker>",
	Short: "섹터에 종목 추가",
	Long: `종목을 섹터에 추가합니다. 프로바이더에서 티커를 검증한 뒤
맨 아래 순위로 들어가고, 최근 과거 데이터를 바로 채웁니다.`,
	Args: cobra.ExactArgs(2),
	RunE: runTickerAdd,
}

// tickerRemoveCmd removes a ticker from a sector
var tickerRemoveCmd = &cobra.Command{
	Use:   "remove <sector> <ticker>",
	Short: "섹터에서 종목 제거",
	Long: `종목을 섹터에서 제거하고 순위 공백을 메웁니다.
다른 섹터에도 속하지 않으면 기업 데이터 전체가 삭제됩니다.`,
	Args: cobra.ExactArgs(2),
	RunE: runTickerRemove,
}

func init() {
	rootCmd.AddCommand(tickerCmd)
	tickerCmd.AddCommand(tickerListCmd)
	tickerCmd.AddCommand(tickerAddCmd)
	tickerCmd.AddCommand(tickerRemoveCmd)
}

func newUniverseService(a *app) *universe.Service {
	// Ticker admin makes at most one provider call, no shared limiter.
	return universe.NewService(
		a.db.Pool,
		universe.NewRepository(a.db.Pool),
		a.provider(nil),
		a.log,
	)
}

func runTickerList(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	svc := newUniverseService(a)
	ctx := context.Background()

	if len(args) == 0 {
		sectors, err := svc.ListSectors(ctx)
		if err != nil {
			return err
		}
		for _, s := range sectors {
			name := s.Name
			if s.NameEn != nil {
				name = fmt.Sprintf("%s (%s)", s.Name, *s.NameEn)
			}
			fmt.Printf("%-24s %s\n", s.ID, name)
		}
		return nil
	}

	members, err := svc.ListMembers(ctx, args[0])
	if err != nil {
		return err
	}
	for _, m := range members {
		fmt.Printf("%3d  %-8s %s\n", m.Rank, m.Ticker, m.Name)
	}
	return nil
}

func runTickerAdd(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	member, err := newUniverseService(a).AddTicker(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s) to %s at rank %d\n",
		member.Ticker, member.Name, args[0], member.Rank)

	backfiller := ingest.NewBackfiller(
		ingest.NewRepository(a.db.Pool), a.provider(nil),
		a.cfg.Provider.RequestsPerMin, a.log,
	)
	result, err := backfiller.RunTicker(ctx, member.Ticker, 90)
	if err != nil {
		// the membership is already committed, history can be filled later
		a.log.WithField("ticker", member.Ticker).WithError(err).Warn("History backfill failed")
		fmt.Println("Run 'hegemony backfill' to fill its history")
		return nil
	}
	fmt.Printf("Backfilled %d historical snapshots\n", result.Inserted)
	return nil
}

func runTickerRemove(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if err := newUniverseService(a).RemoveTicker(context.Background(), args[0], args[1]); err != nil {
		return err
	}

	fmt.Printf("Removed %s from %s\n", args[1], args[0])
	return nil
}
