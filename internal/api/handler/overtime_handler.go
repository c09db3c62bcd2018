package handler

import (
	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/response"
)

// OvertimeHandler 加班计算器 HTTP 处理器（不落库）
type OvertimeHandler struct {
	timesheetSvc service.TimesheetService
}

// NewOvertimeHandler 创建 OvertimeHandler
func NewOvertimeHandler(timesheetSvc service.TimesheetService) *OvertimeHandler {
	return &OvertimeHandler{timesheetSvc: timesheetSvc}
}

// Calculate 单日加班计算
// POST /api/v1/overtime/calculate
func (h *OvertimeHandler) Calculate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	result, err := h.timesheetSvc.Calculate(c.Request.Context(), actor, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, result)
}
