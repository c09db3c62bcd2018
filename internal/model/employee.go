package model

// 员工角色
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Employee 员工档案表，对应 employees
type Employee struct {
	EmployeeID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email          string  `gorm:"type:varchar(255);not null"                     json:"email"`
	EmploymentType string  `gorm:"type:varchar(20);not null;default:'full_time'"  json:"employment_type"` // full_time | part_time | contractor | exempt
	IsExempt       bool    `gorm:"not null;default:false"                         json:"is_exempt"`
	ManagerID      *string `gorm:"type:uuid;index"                                json:"manager_id,omitempty"`
	Role           string  `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	Timezone       string  `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	IsActive       bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// IsManagedBy 判断 approverID 是否为该员工的直属经理
func (e *Employee) IsManagedBy(approverID string) bool {
	return e.ManagerID != nil && *e.ManagerID == approverID
}
