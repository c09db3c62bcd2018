package dto

// ── 审计日志 DTO ──

// AuditLogListRequest 审计日志查询参数（from/to 为 RFC3339）
type AuditLogListRequest struct {
	ActorID        string `form:"actor_id"         binding:"omitempty,uuid"`
	TargetRecordID string `form:"target_record_id" binding:"omitempty,uuid"`
	Action         string `form:"action"           binding:"omitempty,oneof=create submit approve reject recalculate override delete"`
	From           string `form:"from"             binding:"omitempty"`
	To             string `form:"to"               binding:"omitempty"`
	PaginationRequest
}

// AuditLogResponse 审计日志响应
type AuditLogResponse struct {
	ID             int64                  `json:"id"`
	ActorID        string                 `json:"actor_id"`
	Action         string                 `json:"action"`
	TargetRecordID string                 `json:"target_record_id"`
	Details        map[string]interface{} `json:"details,omitempty"`
	Timestamp      string                 `json:"timestamp"`
}
