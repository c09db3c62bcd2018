package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
)

// ClassificationResolver 按员工档案解析加班分类
type ClassificationResolver interface {
	Resolve(ctx context.Context, employeeID string) (*model.Employee, overtime.Classification, error)
}

type classificationResolver struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassificationResolver 创建 ClassificationResolver 实例
func NewClassificationResolver(repo *repository.Repository, logger *zap.Logger) ClassificationResolver {
	return &classificationResolver{repo: repo, logger: logger}
}

func (r *classificationResolver) Resolve(ctx context.Context, employeeID string) (*model.Employee, overtime.Classification, error) {
	emp, err := r.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, overtime.Classification{}, ErrEmployeeNotFound
		}
		r.logger.Error("查询员工档案失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, overtime.Classification{}, err
	}

	cls, err := overtime.Classify(emp.EmployeeID, emp.EmploymentType, emp.IsExempt)
	if err != nil {
		r.logger.Warn("员工用工类型无法识别",
			zap.String("employee_id", employeeID),
			zap.String("employment_type", emp.EmploymentType))
		return nil, overtime.Classification{}, err
	}
	return emp, cls, nil
}

// employeeLocation 员工时区，无法识别时按 UTC 处理
func employeeLocation(emp *model.Employee) *time.Location {
	if emp == nil || emp.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(emp.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
