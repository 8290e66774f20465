package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hegemony",
	Short: "Hegemony - 기술 섹터 패권 점수 엔진",
	Long: `Hegemony Score Engine

기술 섹터별 상장 기업의 시장 지배력을 0-100점으로 평가합니다.
규모, 성장성, 수익성, 시장 심리 4개 차원을 가중 합산하고
지수이동평균으로 스무딩하여 섹터 내 순위를 매깁니다.

Usage:
  go run ./cmd/hegemony [command]

Examples:
  go run ./cmd/hegemony migrate
  go run ./cmd/hegemony update
  go run ./cmd/hegemony score
  go run ./cmd/hegemony api`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
