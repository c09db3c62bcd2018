package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 重算结果标签
const (
	ResultOK      = "ok"
	ResultNoop    = "noop"
	ResultAborted = "aborted"
	ResultError   = "error"
)

var (
	// Recalculations 周重算次数
	Recalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timesheet",
		Name:      "recalculations_total",
		Help:      "Weekly recalculation runs by result",
	}, []string{"result"})

	// RecalculationDuration 周重算耗时（含等待锁）
	RecalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "timesheet",
		Name:      "recalculation_duration_seconds",
		Help:      "Weekly recalculation latency including lock wait",
		Buckets:   prometheus.DefBuckets,
	})

	// RecalculatedEntries 重算实际写入的记录数
	RecalculatedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "timesheet",
		Name:      "recalculated_entries_total",
		Help:      "Time entries whose computed hours changed during recalculation",
	})

	// ApprovalTransitions 审批状态迁移次数
	ApprovalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timesheet",
		Name:      "approval_transitions_total",
		Help:      "Approval state transitions by action",
	}, []string{"action"})

	// AuditWriteFailures 审计写入失败次数（不影响主流程）
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "timesheet",
		Name:      "audit_write_failures_total",
		Help:      "Audit entries that could not be persisted",
	})
)
