package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/api"
	"github.com/wonny/hegemony/internal/api/handlers"
	"github.com/wonny/hegemony/internal/ingest"
	"github.com/wonny/hegemony/internal/pipeline"
	"github.com/wonny/hegemony/internal/scheduler"
	"github.com/wonny/hegemony/internal/scheduler/jobs"
	"github.com/wonny/hegemony/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `리포팅 UI용 REST API 서버를 시작합니다.

Endpoints:
  GET  /health                          - Health check
  GET  /api/sectors                     - 섹터 목록
  GET  /api/sectors/{id}/rankings       - 섹터 내 순위
  GET  /api/companies/{ticker}/score    - 기업 점수 상세
  GET  /api/companies/{ticker}/history  - 점수 이력
  POST /api/pipeline/run                - 점수 계산 트리거
  GET  /ws                              - 실행 요약 피드

Example:
  go run ./cmd/hegemony api
  go run ./cmd/hegemony api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	redisClient, err := a.redisClient()
	if err != nil {
		return err
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "hegemony")
	hub := api.NewHub(a.log)
	runner := pipeline.NewRunner(a.db.Pool, a.log)

	sectorHandler := handlers.NewSectorHandler(a.db.Pool, cache, a.log)
	companyHandler := handlers.NewCompanyHandler(a.db.Pool, cache, a.log)
	pipelineHandler := handlers.NewPipelineHandler(runner, hub, a.log)

	router := api.NewRouter(sectorHandler, companyHandler, pipelineHandler, hub, a.log)
	server := api.New(a.cfg, a.log, router)

	// Optional in-process scheduler alongside the API
	var sched *scheduler.Scheduler
	if a.cfg.SchedulerEnabled {
		sched = scheduler.New(a.log)

		collector := ingest.NewCollector(
			ingest.NewRepository(a.db.Pool), a.provider(redisClient),
			a.cfg.Provider.RequestsPerMin, a.log,
		)
		if err := sched.AddJob(jobs.NewDailyUpdateJob(collector, runner, hub, a.log)); err != nil {
			return err
		}
		if err := sched.AddJob(jobs.NewMaintenanceJob(a.db.Pool, a.db, a.log)); err != nil {
			return err
		}

		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
