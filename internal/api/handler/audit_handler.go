package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/response"
)

// AuditHandler 审计日志 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListAuditLogs 审计日志分页查询（管理员）
// GET /api/v1/audit-logs?actor_id=&target_record_id=&action=&from=&to=&page=&page_size=
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	logs, total, err := h.auditSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleAuditError(c, err)
		return
	}
	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

func (h *AuditHandler) handleAuditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAuditFilter):
		response.BadRequest(c, 23001, "审计查询时间范围无效，from/to 须为 RFC3339 且 to 晚于 from")
	default:
		handleDomainError(c, err)
	}
}
