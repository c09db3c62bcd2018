package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/service"
	"inv-timesheet/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出员工周工时表
// GET /api/v1/export/week?employee_id=xxx&date=2026-10-14
func (h *ExportHandler) ExportWeek(c *gin.Context) {
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

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), actor, employeeID, date)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 24001, "生成 Excel 文件失败")
	default:
		handleDomainError(c, err)
	}
}
