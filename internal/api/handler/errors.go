package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/service"
	pkgerrors "inv-timesheet/backend/pkg/errors"
	"inv-timesheet/backend/pkg/response"
)

// handleDomainError 工时引擎错误到 HTTP 响应的统一映射
// 各 Handler 先处理本模块特有错误，其余落到这里
func handleDomainError(c *gin.Context, err error) {
	// 重算中止需先于其包裹的原始错误判断
	var aborted *pkgerrors.RecalculationAbortedError
	if errors.As(err, &aborted) {
		response.UnprocessableEntity(c, 22001, "周工时重算已中止，本周记录保持原值",
			fmt.Sprintf("%s: %v", aborted.Date.Format("2006-01-02"), aborted.Err))
		return
	}

	switch {
	// ── 输入校验 ──
	case errors.Is(err, pkgerrors.ErrInvalidTimeRange):
		response.BadRequest(c, 20001, "打卡时间区间无效：下班时间须晚于上班时间，且休息时长不超过在岗时长")
	case errors.Is(err, pkgerrors.ErrInvalidIdentifier):
		response.BadRequest(c, 20002, "记录标识格式无效")
	case errors.Is(err, pkgerrors.ErrMissingOverrideReason):
		response.BadRequest(c, 20003, "手动修正必须填写原因")
	case errors.Is(err, pkgerrors.ErrHoursNotQuantized):
		response.BadRequest(c, 20004, "工时必须为 0.25 小时的整数倍")
	case errors.Is(err, pkgerrors.ErrManualTotalMismatch):
		response.BadRequest(c, 20005, "手动工时合计与分项之和不一致")
	case errors.Is(err, pkgerrors.ErrUnknownEmploymentType):
		response.BadRequest(c, 20006, "未知的用工类型")
	case errors.Is(err, service.ErrDuplicateWorkDate):
		response.Conflict(c, 20007, "该日期已有工时记录")

	// ── 资源 ──
	case errors.Is(err, service.ErrTimeEntryNotFound):
		response.NotFound(c, 20101, "工时记录不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 20102, "员工不存在")

	// ── 并发与状态 ──
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20201, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, pkgerrors.ErrInvalidStateTransition):
		response.Conflict(c, 20202, "当前状态不允许此操作")
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		response.Forbidden(c, 20301, "无权操作该记录")

	// ── 审批 ──
	case errors.Is(err, pkgerrors.ErrMissingRejectionReason):
		response.BadRequest(c, 21001, "驳回必须填写原因")
	case errors.Is(err, pkgerrors.ErrZeroHours):
		response.BadRequest(c, 21002, "工时为 0 的记录不可提交")
	case errors.Is(err, pkgerrors.ErrEntryNotCalculated):
		response.Conflict(c, 21003, "记录尚未完成周重算，请先重算本周后再提交审批")

	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusServiceUnavailable, 22002, "周工时重算超时，请稍后重试")
	default:
		response.InternalError(c)
	}
}
