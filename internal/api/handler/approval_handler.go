package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/response"
)

// ApprovalHandler 审批流 HTTP 处理器
type ApprovalHandler struct {
	approvalSvc service.ApprovalService
}

// NewApprovalHandler 创建 ApprovalHandler
func NewApprovalHandler(approvalSvc service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalSvc: approvalSvc}
}

// Submit 提交审批：draft → pending
// POST /api/v1/time-entries/:id/submit
func (h *ApprovalHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.approvalSvc.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entry)
}

// Approve 审批通过：pending → approved
// POST /api/v1/time-entries/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.approvalSvc.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entry)
}

// Reject 驳回：pending → rejected，原因必填
// POST /api/v1/time-entries/:id/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	// 空请求体按缺少原因处理
	var req dto.RejectTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	entry, err := h.approvalSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entry)
}

// ListPending 当前审批人可见的待审批记录
// GET /api/v1/approvals/pending
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entries, err := h.approvalSvc.ListPendingFor(c.Request.Context(), actor)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entries)
}
