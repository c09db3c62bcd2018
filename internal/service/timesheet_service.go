package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// ── 工时记录模块业务错误 ──

var (
	ErrTimeEntryNotFound = errors.New("工时记录不存在")
	ErrEmployeeNotFound  = errors.New("员工不存在")
	ErrDuplicateWorkDate = errors.New("该日期已有工时记录")
)

// TimesheetService 工时记录业务接口
type TimesheetService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateTimeEntryRequest) (*dto.TimeEntryResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ListWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*dto.WeekResponse, error)
	// Calculate 无状态计算；指定 employee_id 时以已提交记录作为周上下文（预览，不落库）
	Calculate(ctx context.Context, actor Actor, req *dto.CalculateRequest) (*dto.CalculateResponse, error)
}

type timesheetService struct {
	repo     *repository.Repository
	resolver ClassificationResolver
	calc     *overtime.Calculator
	coord    *weekCoordinator
	audit    AuditService
	logger   *zap.Logger
}

// NewTimesheetService 创建 TimesheetService 实例
func NewTimesheetService(
	repo *repository.Repository,
	resolver ClassificationResolver,
	calc *overtime.Calculator,
	coord *weekCoordinator,
	audit AuditService,
	logger *zap.Logger,
) TimesheetService {
	return &timesheetService{
		repo:     repo,
		resolver: resolver,
		calc:     calc,
		coord:    coord,
		audit:    audit,
		logger:   logger,
	}
}

// entryFields 创建/修改共用的可编辑字段
type entryFields struct {
	WorkDate         string
	TimeIn           *time.Time
	TimeOut          *time.Time
	BreakDuration    float64
	IsManualOverride bool
	OverrideReason   string
	Manual           *dto.ManualHoursRequest
	Notes            string
}

// ────────────────────── Create ──────────────────────

func (s *timesheetService) Create(ctx context.Context, actor Actor, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.ID
	}
	if err := validateID(employeeID); err != nil {
		return nil, err
	}
	if !actor.canEdit(employeeID) {
		return nil, pkgerrors.ErrUnauthorized
	}

	emp, cls, err := s.resolver.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	entry := &model.TimeEntry{
		EmployeeID: employeeID,
		Status:     model.EntryStatusDraft,
	}
	entry.CreatedBy = &actor.ID
	entry.UpdatedBy = &actor.ID

	if err := s.applyFields(entry, emp, cls, entryFields{
		WorkDate:         req.WorkDate,
		TimeIn:           req.TimeIn,
		TimeOut:          req.TimeOut,
		BreakDuration:    req.BreakDuration,
		IsManualOverride: req.IsManualOverride,
		OverrideReason:   req.OverrideReason,
		Manual:           req.Manual,
		Notes:            req.Notes,
	}); err != nil {
		return nil, err
	}

	week := overtime.WeekOf(entry.WorkDate)
	res, err := s.coord.run(ctx, actor.ID, emp, cls, week, func(ctx context.Context, tx repository.TimeEntryRepository) ([]*model.AuditLog, error) {
		if err := s.ensureDateFree(ctx, tx, entry, week); err != nil {
			return nil, err
		}
		if err := tx.Create(ctx, entry); err != nil {
			s.logger.Error("创建工时记录失败", zap.String("employee_id", employeeID), zap.Error(err))
			return nil, err
		}
		audits := []*model.AuditLog{newAuditEntry(actor.ID, model.AuditActionCreate, entry.TimeEntryID, map[string]interface{}{
			"employee_id": employeeID,
			"work_date":   entry.WorkDate.Format(dateLayout),
		})}
		if entry.IsManualOverride {
			audits = append(audits, newAuditEntry(actor.ID, model.AuditActionOverride, entry.TimeEntryID, overrideDetails(entry)))
		}
		return audits, nil
	})
	if err != nil {
		return nil, err
	}

	if saved := res.find(entry.TimeEntryID); saved != nil {
		entry = saved
	}
	resp := toTimeEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timesheetService) GetByID(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(entry.Employee) && entry.EmployeeID != actor.ID {
		return nil, pkgerrors.ErrUnauthorized
	}
	resp := toTimeEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *timesheetService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(entry.EmployeeID) {
		return nil, pkgerrors.ErrUnauthorized
	}
	if entry.Status != model.EntryStatusDraft {
		return nil, pkgerrors.ErrInvalidStateTransition
	}
	if entry.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	emp, cls, err := s.resolver.Resolve(ctx, entry.EmployeeID)
	if err != nil {
		return nil, err
	}

	oldWeek := overtime.WeekOf(entry.WorkDate)
	updated := *entry
	updated.Employee = nil
	updated.UpdatedBy = &actor.ID
	if err := s.applyFields(&updated, emp, cls, entryFields{
		WorkDate:         req.WorkDate,
		TimeIn:           req.TimeIn,
		TimeOut:          req.TimeOut,
		BreakDuration:    req.BreakDuration,
		IsManualOverride: req.IsManualOverride,
		OverrideReason:   req.OverrideReason,
		Manual:           req.Manual,
		Notes:            req.Notes,
	}); err != nil {
		return nil, err
	}
	newWeek := overtime.WeekOf(updated.WorkDate)

	// 日期跨周移动：原周的后续记录同样需要重算，与新周同一事务提交
	var also []overtime.Week
	if oldWeek.Label() != newWeek.Label() {
		also = append(also, oldWeek)
	}

	res, err := s.coord.run(ctx, actor.ID, emp, cls, newWeek, func(ctx context.Context, tx repository.TimeEntryRepository) ([]*model.AuditLog, error) {
		if err := s.ensureDateFree(ctx, tx, &updated, newWeek); err != nil {
			return nil, err
		}
		if err := tx.Update(ctx, &updated); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("更新工时记录失败", zap.String("id", id), zap.Error(err))
			}
			return nil, err
		}
		if updated.IsManualOverride {
			return []*model.AuditLog{newAuditEntry(actor.ID, model.AuditActionOverride, id, overrideDetails(&updated))}, nil
		}
		return nil, nil
	}, also...)
	if err != nil {
		return nil, err
	}

	result := &updated
	if saved := res.find(id); saved != nil {
		result = saved
	}
	resp := toTimeEntryResponse(result)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *timesheetService) Delete(ctx context.Context, actor Actor, id string) error {
	entry, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canEdit(entry.EmployeeID) {
		return pkgerrors.ErrUnauthorized
	}
	if entry.Status != model.EntryStatusDraft {
		return pkgerrors.ErrInvalidStateTransition
	}

	emp, cls, err := s.resolver.Resolve(ctx, entry.EmployeeID)
	if err != nil {
		return err
	}

	_, err = s.coord.run(ctx, actor.ID, emp, cls, overtime.WeekOf(entry.WorkDate), func(ctx context.Context, tx repository.TimeEntryRepository) ([]*model.AuditLog, error) {
		if err := tx.SoftDelete(ctx, entry, actor.ID); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("删除工时记录失败", zap.String("id", id), zap.Error(err))
			}
			return nil, err
		}
		return []*model.AuditLog{newAuditEntry(actor.ID, model.AuditActionDelete, id, map[string]interface{}{
			"work_date":   entry.WorkDate.Format(dateLayout),
			"total_hours": entry.TotalHours,
		})}, nil
	})
	return err
}

// ────────────────────── ListWeek ──────────────────────

func (s *timesheetService) ListWeek(ctx context.Context, actor Actor, employeeID string, date time.Time) (*dto.WeekResponse, error) {
	if employeeID == "" {
		employeeID = actor.ID
	}
	if err := validateID(employeeID); err != nil {
		return nil, err
	}
	emp, err := s.loadEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(emp) {
		return nil, pkgerrors.ErrUnauthorized
	}

	week := overtime.WeekOf(date)
	entries, err := s.repo.TimeEntry.ListByEmployeeRange(ctx, employeeID, week.Start, week.End)
	if err != nil {
		s.logger.Error("查询周工时失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return toWeekResponse(employeeID, week, entries), nil
}

// ────────────────────── Calculate ──────────────────────

func (s *timesheetService) Calculate(ctx context.Context, actor Actor, req *dto.CalculateRequest) (*dto.CalculateResponse, error) {
	in := overtime.DayInput{
		TimeIn:           req.TimeIn,
		TimeOut:          req.TimeOut,
		BreakHours:       req.BreakDuration,
		IsManualOverride: req.IsManualOverride,
		OverrideReason:   req.OverrideReason,
		Manual:           toManualHours(req.Manual),
	}

	if req.EmployeeID == "" {
		cls, err := overtime.Classify("", req.EmploymentType, req.IsExempt)
		if err != nil {
			return nil, err
		}
		b, err := s.calc.Calculate(in, cls, overtime.WeekContext{HoursBefore: req.WeekHoursBefore})
		if err != nil {
			return nil, err
		}
		return toCalculateResponse("", overtime.RoundToQuarter(req.WeekHoursBefore), b), nil
	}

	// 预览：周上下文取本周当日之前的已存记录
	if err := validateID(req.EmployeeID); err != nil {
		return nil, err
	}
	emp, cls, err := s.resolver.Resolve(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(emp) {
		return nil, pkgerrors.ErrUnauthorized
	}
	if req.TimeIn == nil {
		return nil, fmt.Errorf("%w: 预览需要上班打卡时间", pkgerrors.ErrInvalidTimeRange)
	}

	workDate := overtime.WorkDateIn(*req.TimeIn, employeeLocation(emp))
	week := overtime.WeekOf(workDate)
	entries, err := s.repo.TimeEntry.ListByEmployeeRange(ctx, emp.EmployeeID, week.Start, workDate)
	if err != nil {
		s.logger.Error("查询周工时失败", zap.String("employee_id", emp.EmployeeID), zap.Error(err))
		return nil, err
	}
	var before overtime.Quarters
	for i := range entries {
		if entries[i].Status != model.EntryStatusRejected {
			before += overtime.RoundToQuarter(entries[i].TotalHours)
		}
	}

	b, err := s.calc.Calculate(in, cls, overtime.WeekContext{HoursBefore: before.Hours()})
	if err != nil {
		return nil, err
	}
	return toCalculateResponse(workDate.Format(dateLayout), before, b), nil
}

// ── 辅助函数 ──

func (s *timesheetService) load(ctx context.Context, id string) (*model.TimeEntry, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	entry, err := s.repo.TimeEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		s.logger.Error("查询工时记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *timesheetService) loadEmployee(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工档案失败", zap.String("employee_id", id), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

// applyFields 校验并写入可编辑字段。
// 有打卡时 work_date 取上班时间在员工时区的日期（跨零点班次归属上班日）。
func (s *timesheetService) applyFields(entry *model.TimeEntry, emp *model.Employee, cls overtime.Classification, f entryFields) error {
	var workDate time.Time
	if f.WorkDate != "" {
		d, err := time.Parse(dateLayout, f.WorkDate)
		if err != nil {
			return fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD", pkgerrors.ErrInvalidTimeRange)
		}
		workDate = d
	}
	if f.TimeIn != nil {
		punchDate := overtime.WorkDateIn(*f.TimeIn, employeeLocation(emp))
		if !workDate.IsZero() && !workDate.Equal(punchDate) {
			return fmt.Errorf("%w: work_date 与上班打卡日期不一致", pkgerrors.ErrInvalidTimeRange)
		}
		workDate = punchDate
	}
	if workDate.IsZero() {
		return fmt.Errorf("%w: 缺少工作日期", pkgerrors.ErrInvalidTimeRange)
	}

	// 休息时长按 0.25 小时量化后落库，计算使用同一值，重载后结果一致
	breakHours := f.BreakDuration
	if breakHours > 0 {
		breakHours = overtime.RoundToQuarter(breakHours).Hours()
	}

	in := overtime.DayInput{
		TimeIn:           f.TimeIn,
		TimeOut:          f.TimeOut,
		BreakHours:       breakHours,
		IsManualOverride: f.IsManualOverride,
		OverrideReason:   strings.TrimSpace(f.OverrideReason),
		Manual:           toManualHours(f.Manual),
	}
	// 单日校验（周上下文由重算补齐）
	b, err := s.calc.Calculate(in, cls, overtime.WeekContext{})
	if err != nil {
		return err
	}

	entry.WorkDate = workDate
	entry.TimeIn = f.TimeIn
	entry.TimeOut = f.TimeOut
	entry.BreakDuration = breakHours
	entry.IsManualOverride = f.IsManualOverride
	entry.OverrideReason = in.OverrideReason
	entry.Notes = f.Notes
	if !f.IsManualOverride {
		entry.OverrideReason = ""
	}
	applyBreakdown(entry, b)
	entry.CalculatedAt = nil
	return nil
}

// ensureDateFree 同一员工同一天只允许一条有效记录；被驳回的记录可由新记录更正
func (s *timesheetService) ensureDateFree(ctx context.Context, tx repository.TimeEntryRepository, entry *model.TimeEntry, week overtime.Week) error {
	entries, err := tx.ListByEmployeeRange(ctx, entry.EmployeeID, week.Start, week.End)
	if err != nil {
		return err
	}
	for i := range entries {
		e := &entries[i]
		if e.TimeEntryID == entry.TimeEntryID || e.Status == model.EntryStatusRejected {
			continue
		}
		if e.WorkDate.Equal(entry.WorkDate) {
			return ErrDuplicateWorkDate
		}
	}
	return nil
}

func overrideDetails(e *model.TimeEntry) map[string]interface{} {
	return map[string]interface{}{
		"reason":                      e.OverrideReason,
		"regular_hours":               e.RegularHours,
		"overtime_hours":              e.OvertimeHours,
		"daily_double_overtime_hours": e.DailyDoubleOvertimeHours,
		"total_hours":                 e.TotalHours,
	}
}

func toCalculateResponse(workDate string, before overtime.Quarters, b overtime.Breakdown) *dto.CalculateResponse {
	return &dto.CalculateResponse{
		WorkDate:                 workDate,
		WeekHoursBefore:          before.Hours(),
		RegularHours:             b.Regular,
		OvertimeHours:            b.Overtime,
		DailyDoubleOvertimeHours: b.DailyDouble,
		TotalHours:               b.Total,
		CalculationMethod:        string(b.Method),
		WeeklyHoursAtCalculation: b.WeeklyHoursAtCalculation,
	}
}
