package service

import (
	"github.com/google/uuid"

	"inv-timesheet/backend/internal/model"
	pkgerrors "inv-timesheet/backend/pkg/errors"
)

// Actor 当前调用方身份（由 JWT 中间件注入，Handler 层组装）
type Actor struct {
	ID   string
	Role string
}

// IsAdmin 是否拥有全局审批范围
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// canView 本人、直属经理或管理员可查看
func (a Actor) canView(emp *model.Employee) bool {
	if a.IsAdmin() {
		return true
	}
	if emp == nil {
		return false
	}
	return emp.EmployeeID == a.ID || emp.IsManagedBy(a.ID)
}

// canEdit 本人或管理员可修改草稿
func (a Actor) canEdit(ownerID string) bool {
	return a.IsAdmin() || ownerID == a.ID
}

// canApprove 管理员可审批任意记录；经理仅限下属，且不能审批自己的记录
func (a Actor) canApprove(emp *model.Employee) bool {
	if a.IsAdmin() {
		return true
	}
	if emp == nil || emp.EmployeeID == a.ID {
		return false
	}
	return emp.IsManagedBy(a.ID)
}

// validateID 在访问存储前校验记录标识格式
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pkgerrors.ErrInvalidIdentifier
	}
	return nil
}
