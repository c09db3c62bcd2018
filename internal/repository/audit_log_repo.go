package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"inv-timesheet/backend/internal/model"
)

// AuditLogFilter 审计日志查询条件，零值字段不参与过滤
type AuditLogFilter struct {
	ActorID        string
	TargetRecordID string
	Action         string
	From           *time.Time
	To             *time.Time
	Offset         int
	Limit          int
}

// AuditLogRepository 审计日志数据访问接口（只追加，无更新/删除）
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepo 创建 AuditLogRepository 实例
func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepo) List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.ActorID != "" {
		db = db.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetRecordID != "" {
		db = db.Where("target_record_id = ?", filter.TargetRecordID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		db = db.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("occurred_at < ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("occurred_at ASC, audit_log_id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&logs).Error
	return logs, total, err
}
