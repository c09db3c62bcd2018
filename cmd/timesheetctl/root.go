package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inv-timesheet/backend/config"
	"inv-timesheet/backend/pkg/database"
	applogger "inv-timesheet/backend/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "timesheetctl",
	Short: "工时引擎运维命令",
	Long: `timesheetctl 提供数据库迁移、周工时重算恢复与调试 Token 签发。
配置加载规则与 HTTP 服务一致（config.yaml + TIMESHEET_* 环境变量）。`,
	SilenceUsage: true,
}

// Execute 命令入口
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(tokenCmd)
}

// bootstrap 加载配置与日志
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

// openDB 连接数据库，调用方负责关闭
func openDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
