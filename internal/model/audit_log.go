package model

import (
	"time"

	"gorm.io/datatypes"
)

// 审计动作
const (
	AuditActionCreate      = "create"
	AuditActionSubmit      = "submit"
	AuditActionApprove     = "approve"
	AuditActionReject      = "reject"
	AuditActionRecalculate = "recalculate"
	AuditActionOverride    = "override"
	AuditActionDelete      = "delete"
)

// AuditLog 审计日志表，对应 audit_logs（只追加）
// 同一时间戳按 audit_log_id（插入顺序）排序
type AuditLog struct {
	AuditLogID     int64             `gorm:"primaryKey;autoIncrement"       json:"audit_log_id"`
	ActorID        string            `gorm:"type:uuid;not null;index"       json:"actor_id"`
	Action         string            `gorm:"type:varchar(20);not null;index" json:"action"`
	TargetRecordID string            `gorm:"type:uuid;not null;index"       json:"target_record_id"`
	Details        datatypes.JSONMap `gorm:"type:jsonb"                     json:"details,omitempty"`
	OccurredAt     time.Time         `gorm:"not null;index"                 json:"timestamp"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }
