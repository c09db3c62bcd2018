package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 工时引擎错误分类 ──
// Handler 层通过 errors.Is 区分错误种类，渲染可操作的提示

var (
	ErrInvalidTimeRange       = errors.New("打卡时间区间无效")
	ErrInvalidIdentifier      = errors.New("记录标识格式无效")
	ErrMissingOverrideReason  = errors.New("手动修正必须填写原因")
	ErrMissingRejectionReason = errors.New("驳回必须填写原因")
	ErrInvalidStateTransition = errors.New("当前状态不允许此操作")
	ErrUnauthorized           = errors.New("无权操作该记录")
	ErrRecalculationAborted   = errors.New("周工时重算已中止")

	ErrHoursNotQuantized     = errors.New("工时必须为 0.25 小时的整数倍")
	ErrManualTotalMismatch   = errors.New("手动工时合计与分项之和不一致")
	ErrZeroHours             = errors.New("工时为 0 的记录不可提交")
	ErrEntryNotCalculated    = errors.New("记录尚未完成周重算")
	ErrUnknownEmploymentType = errors.New("未知的用工类型")
)

// RecalculationAbortedError 周重算中止：携带首个失败日期及原始错误
type RecalculationAbortedError struct {
	Date time.Time
	Err  error
}

func (e *RecalculationAbortedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRecalculationAborted.Error(), e.Date.Format("2006-01-02"), e.Err)
}

// Unwrap 暴露原始错误（如 ErrInvalidTimeRange）
func (e *RecalculationAbortedError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrRecalculationAborted) 成立
func (e *RecalculationAbortedError) Is(target error) bool {
	return target == ErrRecalculationAborted
}
