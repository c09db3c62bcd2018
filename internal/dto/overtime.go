package dto

import "time"

// ── 加班计算 DTO ──

// CalculateRequest 无状态计算请求
// 提供 employee_id 时由服务端解析分类与本周已提交工时，否则使用请求中的分类与 week_hours_before
type CalculateRequest struct {
	EmployeeID       string              `json:"employee_id"       binding:"omitempty,uuid"`
	EmploymentType   string              `json:"employment_type"   binding:"omitempty,oneof=full_time part_time contractor exempt"`
	IsExempt         bool                `json:"is_exempt"`
	WeekHoursBefore  float64             `json:"week_hours_before" binding:"min=0"`
	TimeIn           *time.Time          `json:"time_in"`
	TimeOut          *time.Time          `json:"time_out"`
	BreakDuration    float64             `json:"break_duration"    binding:"min=0"`
	IsManualOverride bool                `json:"is_manual_override"`
	OverrideReason   string              `json:"override_reason"`
	Manual           *ManualHoursRequest `json:"manual,omitempty"`
}

// CalculateResponse 计算结果
type CalculateResponse struct {
	WorkDate                 string  `json:"work_date,omitempty"`
	WeekHoursBefore          float64 `json:"week_hours_before"`
	RegularHours             float64 `json:"regular_hours"`
	OvertimeHours            float64 `json:"overtime_hours"`
	DailyDoubleOvertimeHours float64 `json:"daily_double_overtime_hours"`
	TotalHours               float64 `json:"total_hours"`
	CalculationMethod        string  `json:"calculation_method"`
	WeeklyHoursAtCalculation float64 `json:"weekly_hours_at_calculation"`
}
