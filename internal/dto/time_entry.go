package dto

import "time"

// ── 工时记录 DTO ──

// ManualHoursRequest 手动修正工时
type ManualHoursRequest struct {
	RegularHours             float64 `json:"regular_hours"`
	OvertimeHours            float64 `json:"overtime_hours"`
	DailyDoubleOvertimeHours float64 `json:"daily_double_overtime_hours"`
	TotalHours               float64 `json:"total_hours"`
}

// CreateTimeEntryRequest 新建工时记录请求
// EmployeeID 为空表示本人记录；管理员补录他人时必填
type CreateTimeEntryRequest struct {
	EmployeeID       string              `json:"employee_id"      binding:"omitempty,uuid"`
	WorkDate         string              `json:"work_date"        binding:"omitempty,datetime=2006-01-02"`
	TimeIn           *time.Time          `json:"time_in"`
	TimeOut          *time.Time          `json:"time_out"`
	BreakDuration    float64             `json:"break_duration"   binding:"min=0"`
	IsManualOverride bool                `json:"is_manual_override"`
	OverrideReason   string              `json:"override_reason"  binding:"max=500"`
	Manual           *ManualHoursRequest `json:"manual,omitempty"`
	Notes            string              `json:"notes"            binding:"max=500"`
}

// UpdateTimeEntryRequest 修改工时记录请求（仅草稿）
type UpdateTimeEntryRequest struct {
	Version          int                 `json:"version"          binding:"required,min=1"`
	WorkDate         string              `json:"work_date"        binding:"omitempty,datetime=2006-01-02"`
	TimeIn           *time.Time          `json:"time_in"`
	TimeOut          *time.Time          `json:"time_out"`
	BreakDuration    float64             `json:"break_duration"   binding:"min=0"`
	IsManualOverride bool                `json:"is_manual_override"`
	OverrideReason   string              `json:"override_reason"  binding:"max=500"`
	Manual           *ManualHoursRequest `json:"manual,omitempty"`
	Notes            string              `json:"notes"            binding:"max=500"`
}

// WeekQuery 周视图查询参数
type WeekQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Date       string `form:"date"        binding:"required,datetime=2006-01-02"`
}

// RecalculateWeekRequest 手动触发周重算
type RecalculateWeekRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Date       string `json:"date"        binding:"required,datetime=2006-01-02"`
}

// ── 响应 ──

// TimeEntryResponse 工时记录响应
type TimeEntryResponse struct {
	ID                       string         `json:"id"`
	EmployeeID               string         `json:"employee_id"`
	Employee                 *EmployeeBrief `json:"employee,omitempty"`
	WorkDate                 string         `json:"work_date"`
	TimeIn                   *string        `json:"time_in,omitempty"`
	TimeOut                  *string        `json:"time_out,omitempty"`
	BreakDuration            float64        `json:"break_duration"`
	IsManualOverride         bool           `json:"is_manual_override"`
	OverrideReason           string         `json:"override_reason,omitempty"`
	RegularHours             float64        `json:"regular_hours"`
	OvertimeHours            float64        `json:"overtime_hours"`
	DailyDoubleOvertimeHours float64        `json:"daily_double_overtime_hours"`
	TotalHours               float64        `json:"total_hours"`
	CalculationMethod        string         `json:"calculation_method"`
	WeeklyHoursAtCalculation float64        `json:"weekly_hours_at_calculation"`
	CalculatedAt             *string        `json:"calculated_at,omitempty"` // 为空表示尚未完成周重算
	Status                   string         `json:"status"`
	SubmittedAt              *string        `json:"submitted_at,omitempty"`
	ApprovedAt               *string        `json:"approved_at,omitempty"`
	ApprovedBy               *string        `json:"approved_by,omitempty"`
	RejectedAt               *string        `json:"rejected_at,omitempty"`
	RejectedBy               *string        `json:"rejected_by,omitempty"`
	RejectReason             string         `json:"reject_reason,omitempty"`
	Notes                    string         `json:"notes,omitempty"`
	Version                  int            `json:"version"`
	CreatedAt                string         `json:"created_at"`
	UpdatedAt                string         `json:"updated_at"`
}

// WeekTotals 周汇总
type WeekTotals struct {
	RegularHours             float64 `json:"regular_hours"`
	OvertimeHours            float64 `json:"overtime_hours"`
	DailyDoubleOvertimeHours float64 `json:"daily_double_overtime_hours"`
	TotalHours               float64 `json:"total_hours"`
}

// WeekResponse 员工周视图
type WeekResponse struct {
	EmployeeID string              `json:"employee_id"`
	Week       string              `json:"week"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	Entries    []TimeEntryResponse `json:"entries"`
	Totals     WeekTotals          `json:"totals"`
}

// RecalculatedWeekResponse 周重算结果
type RecalculatedWeekResponse struct {
	WeekResponse
	ChangedEntryIDs []string `json:"changed_entry_ids"`
}
