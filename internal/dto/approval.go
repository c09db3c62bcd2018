package dto

// ── 审批模块 DTO ──

// RejectTimeEntryRequest 驳回请求
// reason 的非空校验在 Service 层完成，以返回明确的 MissingRejectionReason
type RejectTimeEntryRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
