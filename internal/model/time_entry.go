package model

import "time"

// 工时记录状态
const (
	EntryStatusDraft    = "draft"
	EntryStatusPending  = "pending"
	EntryStatusApproved = "approved"
	EntryStatusRejected = "rejected"
)

// TimeEntry 工时记录表，对应 time_entries
// regular/overtime/double/total/calculation_method/weekly_hours_at_calculation
// 仅由计算器写入（手动修正除外）
type TimeEntry struct {
	TimeEntryID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_entry_id"`
	EmployeeID               string     `gorm:"type:uuid;not null;index:idx_time_entries_employee_date" json:"employee_id"`
	WorkDate                 time.Time  `gorm:"type:date;not null;index:idx_time_entries_employee_date" json:"work_date"`
	TimeIn                   *time.Time `json:"time_in,omitempty"`
	TimeOut                  *time.Time `json:"time_out,omitempty"`
	BreakDuration            float64    `gorm:"type:numeric(5,2);not null;default:0"           json:"break_duration"`
	IsManualOverride         bool       `gorm:"not null;default:false"                         json:"is_manual_override"`
	OverrideReason           string     `gorm:"type:varchar(500)"                              json:"override_reason,omitempty"`
	RegularHours             float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"regular_hours"`
	OvertimeHours            float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"overtime_hours"`
	DailyDoubleOvertimeHours float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"daily_double_overtime_hours"`
	TotalHours               float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"total_hours"`
	CalculationMethod        string     `gorm:"type:varchar(32)"                               json:"calculation_method"`
	WeeklyHoursAtCalculation float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"weekly_hours_at_calculation"`
	CalculatedAt             *time.Time `json:"calculated_at,omitempty"`
	Status                   string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | pending | approved | rejected
	SubmittedAt              *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt               *time.Time `json:"approved_at,omitempty"`
	ApprovedBy               *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	RejectedAt               *time.Time `json:"rejected_at,omitempty"`
	RejectedBy               *string    `gorm:"type:uuid"                                      json:"rejected_by,omitempty"`
	RejectReason             string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	Notes                    string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	VersionedModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (TimeEntry) TableName() string { return "time_entries" }

// SameComputed 判断两条记录的计算字段是否一致（用于幂等重算）
func (e *TimeEntry) SameComputed(o *TimeEntry) bool {
	return e.RegularHours == o.RegularHours &&
		e.OvertimeHours == o.OvertimeHours &&
		e.DailyDoubleOvertimeHours == o.DailyDoubleOvertimeHours &&
		e.TotalHours == o.TotalHours &&
		e.CalculationMethod == o.CalculationMethod &&
		e.WeeklyHoursAtCalculation == o.WeeklyHoursAtCalculation
}
