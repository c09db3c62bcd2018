package handler

import "inv-timesheet/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Timesheet *TimesheetHandler
	Approval  *ApprovalHandler
	Overtime  *OvertimeHandler
	Audit     *AuditHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Timesheet: NewTimesheetHandler(svc.Timesheet, svc.Recalc),
		Approval:  NewApprovalHandler(svc.Approval),
		Overtime:  NewOvertimeHandler(svc.Timesheet),
		Audit:     NewAuditHandler(svc.Audit),
		Export:    NewExportHandler(svc.Export),
	}
}
