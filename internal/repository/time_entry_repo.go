package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"inv-timesheet/backend/internal/model"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// StatusChange 审批状态迁移参数
type StatusChange struct {
	From    string
	To      string
	ActorID string
	At      time.Time
	Reason  string // 仅驳回
}

// TimeEntryRepository 工时记录数据访问接口
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *model.TimeEntry) error
	GetByID(ctx context.Context, id string) (*model.TimeEntry, error)
	// ListByEmployeeRange 返回 [from, to) 内的记录，按日期、创建时间升序
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.TimeEntry, error)
	// Update 更新可编辑字段及单日预计算结果（乐观锁），周内累计由随后的重算补齐
	Update(ctx context.Context, entry *model.TimeEntry) error
	// SoftDelete 软删除（乐观锁），行保留供审计
	SoftDelete(ctx context.Context, entry *model.TimeEntry, deletedBy string) error
	// SaveComputed 单事务写入一周的计算字段，任一版本冲突则整体回滚
	SaveComputed(ctx context.Context, entries []*model.TimeEntry) error
	// TransitionStatus 以当前状态为条件的 CAS 更新；状态已变化时返回 ErrOptimisticLock
	TransitionStatus(ctx context.Context, id string, change StatusChange) error
	// ListPending 待审批记录；managerID 为 nil 时不限下属范围
	ListPending(ctx context.Context, managerID *string) ([]model.TimeEntry, error)
	// Transaction 在单个事务内执行 fn，fn 返回错误时全部回滚
	Transaction(ctx context.Context, fn func(tx TimeEntryRepository) error) error
}

type timeEntryRepo struct {
	db *gorm.DB
}

// NewTimeEntryRepo 创建 TimeEntryRepository 实例
func NewTimeEntryRepo(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepo{db: db}
}

func (r *timeEntryRepo) Create(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *timeEntryRepo) GetByID(ctx context.Context, id string) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("time_entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepo) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date >= ? AND work_date < ?", employeeID, from, to).
		Order("work_date ASC, created_at ASC, time_entry_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timeEntryRepo) Update(ctx context.Context, entry *model.TimeEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(&model.TimeEntry{}).
		Where("time_entry_id = ? AND version = ?", entry.TimeEntryID, oldVersion).
		Updates(map[string]interface{}{
			"work_date":          entry.WorkDate,
			"time_in":            entry.TimeIn,
			"time_out":           entry.TimeOut,
			"break_duration":     entry.BreakDuration,
			"is_manual_override": entry.IsManualOverride,
			"override_reason":    entry.OverrideReason,
			"notes":              entry.Notes,
			"updated_by":         entry.UpdatedBy,
			"version":            oldVersion + 1,

			"regular_hours":               entry.RegularHours,
			"overtime_hours":              entry.OvertimeHours,
			"daily_double_overtime_hours": entry.DailyDoubleOvertimeHours,
			"total_hours":                 entry.TotalHours,
			"calculation_method":          entry.CalculationMethod,
			"weekly_hours_at_calculation": entry.WeeklyHoursAtCalculation,
			"calculated_at":               entry.CalculatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *timeEntryRepo) SoftDelete(ctx context.Context, entry *model.TimeEntry, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.TimeEntry{}).
		Where("time_entry_id = ? AND version = ?", entry.TimeEntryID, entry.Version).
		Updates(map[string]interface{}{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
			"version":    entry.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	return nil
}

func (r *timeEntryRepo) SaveComputed(ctx context.Context, entries []*model.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			result := tx.Model(&model.TimeEntry{}).
				Where("time_entry_id = ? AND version = ?", e.TimeEntryID, e.Version).
				Updates(map[string]interface{}{
					"regular_hours":               e.RegularHours,
					"overtime_hours":              e.OvertimeHours,
					"daily_double_overtime_hours": e.DailyDoubleOvertimeHours,
					"total_hours":                 e.TotalHours,
					"calculation_method":          e.CalculationMethod,
					"weekly_hours_at_calculation": e.WeeklyHoursAtCalculation,
					"calculated_at":               e.CalculatedAt,
					"version":                     e.Version + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.ErrOptimisticLock
			}
		}
		return nil
	})
}

func (r *timeEntryRepo) TransitionStatus(ctx context.Context, id string, change StatusChange) error {
	updates := map[string]interface{}{
		"status":     change.To,
		"updated_by": change.ActorID,
		"version":    gorm.Expr("version + 1"),
	}
	switch change.To {
	case model.EntryStatusPending:
		updates["submitted_at"] = change.At
	case model.EntryStatusApproved:
		updates["approved_at"] = change.At
		updates["approved_by"] = change.ActorID
	case model.EntryStatusRejected:
		updates["rejected_at"] = change.At
		updates["rejected_by"] = change.ActorID
		updates["reject_reason"] = change.Reason
	}

	result := r.db.WithContext(ctx).
		Model(&model.TimeEntry{}).
		Where("time_entry_id = ? AND status = ?", id, change.From).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *timeEntryRepo) Transaction(ctx context.Context, fn func(tx TimeEntryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&timeEntryRepo{db: tx})
	})
}

func (r *timeEntryRepo) ListPending(ctx context.Context, managerID *string) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	db := r.db.WithContext(ctx).
		Preload("Employee").
		Where("time_entries.status = ?", model.EntryStatusPending)
	if managerID != nil {
		db = db.Joins("JOIN employees ON employees.employee_id = time_entries.employee_id").
			Where("employees.manager_id = ? AND time_entries.employee_id <> ?", *managerID, *managerID)
	}
	err := db.Order("time_entries.work_date ASC, time_entries.submitted_at ASC").
		Find(&entries).Error
	return entries, err
}
