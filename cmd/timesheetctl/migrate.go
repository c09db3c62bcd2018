package main

import (
	"github.com/spf13/cobra"

	"inv-timesheet/backend/pkg/database"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行内置数据库迁移",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&rollbackSteps, "rollback", 0, "回滚指定步数（0 表示向上迁移到最新）")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, closeDB, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if rollbackSteps > 0 {
		return database.RollbackMigrations(sqlDB, rollbackSteps, logger)
	}
	return database.RunMigrations(sqlDB, logger)
}
