package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
	"inv-timesheet/backend/pkg/metrics"
	"inv-timesheet/backend/pkg/weeklock"
)

// 与审批等未持周锁的写操作发生版本冲突时的重读次数
const maxRecalcAttempts = 3

// RecalcService 周工时重算
type RecalcService interface {
	// RecalculateWeek 重算 date 所在 ISO 周的全部记录；幂等，超时后可直接重试
	RecalculateWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*dto.RecalculatedWeekResponse, error)
}

// weekResult 一次重算后的整周状态
type weekResult struct {
	Week    overtime.Week
	Entries []model.TimeEntry
	Changed []string
}

// find 按 ID 查找重算后的记录
func (r *weekResult) find(id string) *model.TimeEntry {
	for i := range r.Entries {
		if r.Entries[i].TimeEntryID == id {
			return &r.Entries[i]
		}
	}
	return nil
}

// weekCoordinator 串行化同一员工同一周的所有写入与重算
type weekCoordinator struct {
	repo     *repository.Repository
	resolver ClassificationResolver
	calc     *overtime.Calculator
	locker   weeklock.Locker
	audit    AuditService
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func newWeekCoordinator(
	repo *repository.Repository,
	resolver ClassificationResolver,
	calc *overtime.Calculator,
	locker weeklock.Locker,
	audit AuditService,
	timeout time.Duration,
	logger *zap.Logger,
) *weekCoordinator {
	return &weekCoordinator{
		repo:     repo,
		resolver: resolver,
		calc:     calc,
		locker:   locker,
		audit:    audit,
		timeout:  timeout,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewRecalcService 创建 RecalcService 实例
func NewRecalcService(
	repo *repository.Repository,
	resolver ClassificationResolver,
	calc *overtime.Calculator,
	locker weeklock.Locker,
	audit AuditService,
	timeout time.Duration,
	logger *zap.Logger,
) RecalcService {
	return newWeekCoordinator(repo, resolver, calc, locker, audit, timeout, logger)
}

// ────────────────────── RecalculateWeek ──────────────────────

func (c *weekCoordinator) RecalculateWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*dto.RecalculatedWeekResponse, error) {
	if err := validateID(employeeID); err != nil {
		return nil, err
	}
	emp, cls, err := c.resolver.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(emp) {
		return nil, pkgerrors.ErrUnauthorized
	}

	res, err := c.run(ctx, actor.ID, emp, cls, overtime.WeekOf(date), nil)
	if err != nil {
		return nil, err
	}

	changed := res.Changed
	if changed == nil {
		changed = []string{}
	}
	return &dto.RecalculatedWeekResponse{
		WeekResponse:    *toWeekResponse(employeeID, res.Week, res.Entries),
		ChangedEntryIDs: changed,
	}, nil
}

// weekMutation 周锁与事务内执行的写操作，返回提交后需写入的审计记录
type weekMutation func(ctx context.Context, tx repository.TimeEntryRepository) ([]*model.AuditLog, error)

// run 持周锁，在同一事务内执行 mutate（可为 nil）并重算 week 及 also 中的各周。
// mutate 或任一周重算失败（含超时）时整个事务回滚，编辑与各周计算值均保持原样。
// 提交后先写 mutate 的审计，再写重算审计；返回 week 的重算结果。
func (c *weekCoordinator) run(
	ctx context.Context,
	actorID string,
	emp *model.Employee,
	cls overtime.Classification,
	week overtime.Week,
	mutate weekMutation,
	also ...overtime.Week,
) (*weekResult, error) {
	timer := prometheus.NewTimer(metrics.RecalculationDuration)
	defer timer.ObserveDuration()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	weeks := append([]overtime.Week{week}, also...)
	keys := make([]string, 0, len(weeks))
	for _, w := range weeks {
		keys = append(keys, overtime.LockKey(emp.EmployeeID, w))
	}
	key := keys[0]

	// 多把周锁按键排序获取，避免跨周移动互相等待
	ordered := append([]string(nil), keys...)
	sort.Strings(ordered)
	for _, k := range ordered {
		release, err := c.locker.Acquire(ctx, k)
		if err != nil {
			metrics.Recalculations.WithLabelValues(metrics.ResultError).Inc()
			c.logger.Warn("获取周锁失败", zap.String("key", k), zap.Error(err))
			return nil, fmt.Errorf("获取周锁失败: %w", err)
		}
		defer release()
	}

	results := make([]*weekResult, len(weeks))
	var audits []*model.AuditLog
	var mutateErr error
	err := c.repo.TimeEntry.Transaction(ctx, func(tx repository.TimeEntryRepository) error {
		if mutate != nil {
			if audits, mutateErr = mutate(ctx, tx); mutateErr != nil {
				return mutateErr
			}
		}
		for i, w := range weeks {
			res, err := c.recalculateWithRetry(ctx, tx, keys[i], emp.EmployeeID, cls, w)
			if err != nil {
				return err
			}
			results[i] = res
		}
		return nil
	})
	if mutateErr != nil {
		return nil, mutateErr
	}
	if err != nil {
		var aborted *pkgerrors.RecalculationAbortedError
		if errors.As(err, &aborted) {
			metrics.Recalculations.WithLabelValues(metrics.ResultAborted).Inc()
			c.logger.Warn("周重算中止，事务已回滚",
				zap.String("key", key),
				zap.String("date", aborted.Date.Format(dateLayout)),
				zap.Error(aborted.Err))
		} else {
			metrics.Recalculations.WithLabelValues(metrics.ResultError).Inc()
			c.logger.Error("周重算失败，事务已回滚", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	for _, entry := range audits {
		c.audit.Append(ctx, entry)
	}
	for _, res := range results {
		c.recordChanges(ctx, actorID, res)
	}
	return results[0], nil
}

// recalculateWithRetry 与未持周锁的审批迁移发生版本冲突时重新加载整周
func (c *weekCoordinator) recalculateWithRetry(ctx context.Context, tx repository.TimeEntryRepository, key, employeeID string, cls overtime.Classification, week overtime.Week) (*weekResult, error) {
	var res *weekResult
	var err error
	for attempt := 1; attempt <= maxRecalcAttempts; attempt++ {
		res, err = c.recalculateLocked(ctx, tx, employeeID, cls, week)
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			break
		}
		c.logger.Info("重算遇到版本冲突，重新加载",
			zap.String("key", key), zap.Int("attempt", attempt))
	}
	return res, err
}

// recordChanges 事务提交后记录指标并为每条变化的记录写审计
func (c *weekCoordinator) recordChanges(ctx context.Context, actorID string, res *weekResult) {
	if len(res.Changed) == 0 {
		metrics.Recalculations.WithLabelValues(metrics.ResultNoop).Inc()
		return
	}
	metrics.Recalculations.WithLabelValues(metrics.ResultOK).Inc()
	metrics.RecalculatedEntries.Add(float64(len(res.Changed)))

	for _, id := range res.Changed {
		e := res.find(id)
		c.audit.Append(ctx, newAuditEntry(actorID, model.AuditActionRecalculate, id, map[string]interface{}{
			"week":                        res.Week.Label(),
			"regular_hours":               e.RegularHours,
			"overtime_hours":              e.OvertimeHours,
			"daily_double_overtime_hours": e.DailyDoubleOvertimeHours,
			"total_hours":                 e.TotalHours,
			"calculation_method":          e.CalculationMethod,
			"weekly_hours_at_calculation": e.WeeklyHoursAtCalculation,
		}))
	}
}

// recalculateLocked 按日期升序重算并写回变化的记录。调用方须持有周锁并提供事务。
//
//   - rejected：不重算，不计入累计
//   - approved：不重算，计入累计
//   - 其余（含手动修正）：经计算器校验后写回，手动修正的工时值保持不变
func (c *weekCoordinator) recalculateLocked(ctx context.Context, tx repository.TimeEntryRepository, employeeID string, cls overtime.Classification, week overtime.Week) (*weekResult, error) {
	entries, err := tx.ListByEmployeeRange(ctx, employeeID, week.Start, week.End)
	if err != nil {
		return nil, err
	}

	now := c.now()
	var running overtime.Quarters
	var changed []*model.TimeEntry

	for i := range entries {
		e := &entries[i]
		switch e.Status {
		case model.EntryStatusRejected:
			continue
		case model.EntryStatusApproved:
			running += overtime.RoundToQuarter(e.TotalHours)
			continue
		}

		b, err := c.calc.Calculate(dayInputOf(e), cls, overtime.WeekContext{HoursBefore: running.Hours()})
		if err != nil {
			return nil, &pkgerrors.RecalculationAbortedError{Date: e.WorkDate, Err: err}
		}

		next := *e
		applyBreakdown(&next, b)
		if !next.SameComputed(e) || e.CalculatedAt == nil {
			next.CalculatedAt = &now
			*e = next
			changed = append(changed, e)
		}
		running += overtime.RoundToQuarter(b.Total)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.SaveComputed(ctx, changed); err != nil {
		return nil, err
	}

	res := &weekResult{Week: week, Entries: entries}
	for _, e := range changed {
		e.Version++
		res.Changed = append(res.Changed, e.TimeEntryID)
	}
	return res, nil
}
