package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/repository"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/redis"
	"inv-timesheet/backend/pkg/weeklock"
)

var (
	recalcEmployee string
	recalcDate     string
	recalcActor    string
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "重算员工某一 ISO 周的工时（幂等，用于超时后的恢复）",
	Args:  cobra.NoArgs,
	RunE:  runRecalc,
}

func init() {
	recalcCmd.Flags().StringVar(&recalcEmployee, "employee", "", "员工 ID（UUID）")
	recalcCmd.Flags().StringVar(&recalcDate, "date", "", "周内任一日期 YYYY-MM-DD")
	recalcCmd.Flags().StringVar(&recalcActor, "actor", "", "记入审计日志的操作人 ID（UUID）")
	recalcCmd.MarkFlagRequired("employee")
	recalcCmd.MarkFlagRequired("date")
	recalcCmd.MarkFlagRequired("actor")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	date, err := time.Parse("2006-01-02", recalcDate)
	if err != nil {
		return fmt.Errorf("--date 格式应为 YYYY-MM-DD: %w", err)
	}
	if _, err := uuid.Parse(recalcActor); err != nil {
		return fmt.Errorf("--actor 必须为 UUID: %w", err)
	}

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

	// 与在线服务共用同一把周锁，避免与正在进行的写入交错
	locker := weeklock.Locker(weeklock.NewLocalLocker())
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = weeklock.Chain(locker, weeklock.NewRedisLocker(rdb, cfg.Recalc.LockTTL, cfg.Recalc.LockRetryInterval, logger))
	} else {
		logger.Warn("未启用 Redis，命令行重算无法与在线服务互斥")
	}

	svc := service.NewService(cfg, repository.NewRepository(db), locker, logger)
	actor := service.Actor{ID: recalcActor, Role: model.RoleAdmin}

	result, err := svc.Recalc.RecalculateWeek(context.Background(), actor, recalcEmployee, date)
	if err != nil {
		return err
	}

	logger.Info("周工时重算完成",
		zap.String("employee_id", recalcEmployee),
		zap.String("week", result.Week),
		zap.Int("changed", len(result.ChangedEntryIDs)))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
