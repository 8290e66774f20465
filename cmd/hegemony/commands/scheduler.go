package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/ingest"
	"github.com/wonny/hegemony/internal/pipeline"
	"github.com/wonny/hegemony/internal/scheduler"
	"github.com/wonny/hegemony/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 단독 실행",
	Long: `API 서버 없이 스케줄러만 실행합니다.

등록 작업:
  daily_update  평일 21:30 UTC - 데이터 수집 후 점수 재계산
  maintenance   일요일 03:00 UTC - 보존 기간 지난 스냅샷 정리

Example:
  go run ./cmd/hegemony scheduler
  go run ./cmd/hegemony scheduler --run-now daily_update`,
	RunE: runScheduler,
}

var runNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&runNow, "run-now", "", "시작 직후 즉시 실행할 작업 이름")
}

func runScheduler(cmd *cobra.Command, args []string) error {
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

	sched := scheduler.New(a.log)
	runner := pipeline.NewRunner(a.db.Pool, a.log)
	collector := ingest.NewCollector(
		ingest.NewRepository(a.db.Pool), a.provider(redisClient),
		a.cfg.Provider.RequestsPerMin, a.log,
	)

	if err := sched.AddJob(jobs.NewDailyUpdateJob(collector, runner, nil, a.log)); err != nil {
		return err
	}
	if err := sched.AddJob(jobs.NewMaintenanceJob(a.db.Pool, a.db, a.log)); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if runNow != "" {
		if err := sched.RunJob(runNow); err != nil {
			return err
		}
	}

	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
