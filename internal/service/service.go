package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inv-timesheet/backend/config"
	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
	"inv-timesheet/backend/pkg/weeklock"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Timesheet TimesheetService
	Recalc    RecalcService
	Approval  ApprovalService
	Audit     AuditService
	Export    ExportService
}

// NewService 创建 Service 聚合。locker 决定周锁范围（进程内或叠加 Redis）。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker weeklock.Locker,
	logger *zap.Logger,
) *Service {
	calc := overtime.NewCalculator(overtime.PolicyFromConfig(&cfg.Overtime))
	audit := NewAuditService(repo, cfg.Audit.WriteTimeout, logger)
	resolver := NewClassificationResolver(repo, logger)
	coord := newWeekCoordinator(repo, resolver, calc, locker, audit, cfg.Recalc.Timeout, logger)

	return &Service{
		Timesheet: NewTimesheetService(repo, resolver, calc, coord, audit, logger),
		Recalc:    coord,
		Approval:  NewApprovalService(repo, coord, audit, logger),
		Audit:     audit,
		Export:    NewExportService(repo, logger),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
