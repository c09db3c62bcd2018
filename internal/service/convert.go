package service

import (
	"time"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/overtime"
)

const dateLayout = "2006-01-02"

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func toTimeEntryResponse(e *model.TimeEntry) dto.TimeEntryResponse {
	resp := dto.TimeEntryResponse{
		ID:                       e.TimeEntryID,
		EmployeeID:               e.EmployeeID,
		WorkDate:                 e.WorkDate.Format(dateLayout),
		TimeIn:                   formatTime(e.TimeIn),
		TimeOut:                  formatTime(e.TimeOut),
		BreakDuration:            e.BreakDuration,
		IsManualOverride:         e.IsManualOverride,
		OverrideReason:           e.OverrideReason,
		RegularHours:             e.RegularHours,
		OvertimeHours:            e.OvertimeHours,
		DailyDoubleOvertimeHours: e.DailyDoubleOvertimeHours,
		TotalHours:               e.TotalHours,
		CalculationMethod:        e.CalculationMethod,
		WeeklyHoursAtCalculation: e.WeeklyHoursAtCalculation,
		Status:                   e.Status,
		CalculatedAt:             formatTime(e.CalculatedAt),
		SubmittedAt:              formatTime(e.SubmittedAt),
		ApprovedAt:               formatTime(e.ApprovedAt),
		ApprovedBy:               e.ApprovedBy,
		RejectedAt:               formatTime(e.RejectedAt),
		RejectedBy:               e.RejectedBy,
		RejectReason:             e.RejectReason,
		Notes:                    e.Notes,
		Version:                  e.Version,
		CreatedAt:                e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:                e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.Employee != nil {
		resp.Employee = &dto.EmployeeBrief{
			ID:             e.Employee.EmployeeID,
			Name:           e.Employee.Name,
			EmploymentType: e.Employee.EmploymentType,
			IsExempt:       e.Employee.IsExempt,
		}
	}
	return resp
}

func toTimeEntryResponses(entries []model.TimeEntry) []dto.TimeEntryResponse {
	result := make([]dto.TimeEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toTimeEntryResponse(&entries[i]))
	}
	return result
}

// toWeekResponse 周视图；被驳回的记录展示但不计入汇总
func toWeekResponse(employeeID string, week overtime.Week, entries []model.TimeEntry) *dto.WeekResponse {
	var regular, ot, double, total overtime.Quarters
	for i := range entries {
		e := &entries[i]
		if e.Status == model.EntryStatusRejected {
			continue
		}
		regular += overtime.RoundToQuarter(e.RegularHours)
		ot += overtime.RoundToQuarter(e.OvertimeHours)
		double += overtime.RoundToQuarter(e.DailyDoubleOvertimeHours)
		total += overtime.RoundToQuarter(e.TotalHours)
	}
	return &dto.WeekResponse{
		EmployeeID: employeeID,
		Week:       week.Label(),
		StartDate:  week.Start.Format(dateLayout),
		EndDate:    week.End.AddDate(0, 0, -1).Format(dateLayout),
		Entries:    toTimeEntryResponses(entries),
		Totals: dto.WeekTotals{
			RegularHours:             regular.Hours(),
			OvertimeHours:            ot.Hours(),
			DailyDoubleOvertimeHours: double.Hours(),
			TotalHours:               total.Hours(),
		},
	}
}

func toManualHours(m *dto.ManualHoursRequest) overtime.ManualHours {
	if m == nil {
		return overtime.ManualHours{}
	}
	return overtime.ManualHours{
		Regular:     m.RegularHours,
		Overtime:    m.OvertimeHours,
		DailyDouble: m.DailyDoubleOvertimeHours,
		Total:       m.TotalHours,
	}
}

// dayInputOf 由已存储的记录构造计算输入；手动修正的值取自记录本身
func dayInputOf(e *model.TimeEntry) overtime.DayInput {
	return overtime.DayInput{
		TimeIn:           e.TimeIn,
		TimeOut:          e.TimeOut,
		BreakHours:       e.BreakDuration,
		IsManualOverride: e.IsManualOverride,
		OverrideReason:   e.OverrideReason,
		Manual: overtime.ManualHours{
			Regular:     e.RegularHours,
			Overtime:    e.OvertimeHours,
			DailyDouble: e.DailyDoubleOvertimeHours,
			Total:       e.TotalHours,
		},
	}
}

// applyBreakdown 写入计算字段
func applyBreakdown(e *model.TimeEntry, b overtime.Breakdown) {
	e.RegularHours = b.Regular
	e.OvertimeHours = b.Overtime
	e.DailyDoubleOvertimeHours = b.DailyDouble
	e.TotalHours = b.Total
	e.CalculationMethod = string(b.Method)
	e.WeeklyHoursAtCalculation = b.WeeklyHoursAtCalculation
}
