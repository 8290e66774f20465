package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hegemony/internal/migrate"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "데이터베이스 스키마 적용",
	Long: `내장된 SQL 마이그레이션을 순서대로 적용합니다.
이미 적용된 파일은 건너뜁니다.

Example:
  go run ./cmd/hegemony migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if err := migrate.Run(context.Background(), a.db.Pool, a.log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Migrations up to date")
	return nil
}
