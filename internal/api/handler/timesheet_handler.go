package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/response"
)

const dateLayout = "2006-01-02"

// TimesheetHandler 工时记录 HTTP 处理器
type TimesheetHandler struct {
	timesheetSvc service.TimesheetService
	recalcSvc    service.RecalcService
}

// NewTimesheetHandler 创建 TimesheetHandler
func NewTimesheetHandler(timesheetSvc service.TimesheetService, recalcSvc service.RecalcService) *TimesheetHandler {
	return &TimesheetHandler{timesheetSvc: timesheetSvc, recalcSvc: recalcSvc}
}

// CreateTimeEntry 新建工时记录（草稿），写入后重算所在周
// POST /api/v1/time-entries
func (h *TimesheetHandler) CreateTimeEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	entry, err := h.timesheetSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.Created(c, entry)
}

// GetTimeEntry 获取单条工时记录
// GET /api/v1/time-entries/:id
func (h *TimesheetHandler) GetTimeEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entry, err := h.timesheetSvc.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entry)
}

// UpdateTimeEntry 修改草稿记录
// PUT /api/v1/time-entries/:id
func (h *TimesheetHandler) UpdateTimeEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	entry, err := h.timesheetSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, entry)
}

// DeleteTimeEntry 软删除草稿记录
// DELETE /api/v1/time-entries/:id
func (h *TimesheetHandler) DeleteTimeEntry(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.timesheetSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetWeek 周视图：本周全部记录及合计
// GET /api/v1/time-entries/week?employee_id=xxx&date=2026-10-14
func (h *TimesheetHandler) GetWeek(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}
	date, _ := time.Parse(dateLayout, q.Date)

	employeeID := q.EmployeeID
	if employeeID == "" {
		employeeID = actor.ID
	}

	week, err := h.timesheetSvc.ListWeek(c.Request.Context(), actor, employeeID, date)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, week)
}

// RecalculateWeek 手动触发周重算（经理/管理员），用于超时后的恢复
// POST /api/v1/time-entries/week/recalculate
func (h *TimesheetHandler) RecalculateWeek(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.RecalculateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	result, err := h.recalcSvc.RecalculateWeek(c.Request.Context(), actor, req.EmployeeID, date)
	if err != nil {
		handleDomainError(c, err)
		return
	}
	response.OK(c, result)
}
