package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/overtime"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
	"inv-timesheet/backend/pkg/metrics"
)

// 旧客户端使用的待审批状态别名
const entryStatusSubmittedAlias = "submitted"

// ApprovalService 审批状态机
//
//	draft ──submit──▶ pending ──approve──▶ approved
//	                          └─reject───▶ rejected
//
// 状态迁移以当前状态为条件做 CAS 更新，approve/reject 对同一记录恰好一次成功。
type ApprovalService interface {
	Submit(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error)
	Approve(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error)
	Reject(ctx context.Context, actor Actor, id, reason string) (*dto.TimeEntryResponse, error)
	// ListPendingFor 服务端按审批人范围过滤：管理员看全部，经理仅看直属下属
	ListPendingFor(ctx context.Context, actor Actor) ([]dto.TimeEntryResponse, error)
}

type approvalService struct {
	repo   *repository.Repository
	coord  *weekCoordinator
	audit  AuditService
	logger *zap.Logger
	now    func() time.Time
}

// NewApprovalService 创建 ApprovalService 实例。驳回经 coord 与整周重算同一事务提交。
func NewApprovalService(repo *repository.Repository, coord *weekCoordinator, audit AuditService, logger *zap.Logger) ApprovalService {
	return &approvalService{
		repo:   repo,
		coord:  coord,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Submit ──────────────────────

func (s *approvalService) Submit(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(entry.EmployeeID) {
		return nil, pkgerrors.ErrUnauthorized
	}
	if entry.Status != model.EntryStatusDraft {
		return nil, pkgerrors.ErrInvalidStateTransition
	}
	if entry.IsManualOverride && strings.TrimSpace(entry.OverrideReason) == "" {
		return nil, pkgerrors.ErrMissingOverrideReason
	}
	if overtime.RoundToQuarter(entry.TotalHours) <= 0 {
		return nil, pkgerrors.ErrZeroHours
	}
	if entry.CalculatedAt == nil {
		return nil, pkgerrors.ErrEntryNotCalculated
	}

	at := s.now()
	if err := s.transition(ctx, s.repo.TimeEntry, model.AuditActionSubmit, entry, repository.StatusChange{
		From:    entry.Status,
		To:      model.EntryStatusPending,
		ActorID: actor.ID,
		At:      at,
	}); err != nil {
		return nil, err
	}
	metrics.ApprovalTransitions.WithLabelValues(model.AuditActionSubmit).Inc()
	entry.SubmittedAt = &at

	s.audit.Append(ctx, newAuditEntry(actor.ID, model.AuditActionSubmit, id, map[string]interface{}{
		"total_hours": entry.TotalHours,
	}))
	resp := toTimeEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── Approve ──────────────────────

func (s *approvalService) Approve(ctx context.Context, actor Actor, id string) (*dto.TimeEntryResponse, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canApprove(entry.Employee) {
		return nil, pkgerrors.ErrUnauthorized
	}
	if !isPending(entry.Status) {
		return nil, pkgerrors.ErrInvalidStateTransition
	}
	// 审批后工时冻结，不允许冻结未经周累计计算的值
	if entry.CalculatedAt == nil {
		return nil, pkgerrors.ErrEntryNotCalculated
	}

	at := s.now()
	if err := s.transition(ctx, s.repo.TimeEntry, model.AuditActionApprove, entry, repository.StatusChange{
		From:    entry.Status,
		To:      model.EntryStatusApproved,
		ActorID: actor.ID,
		At:      at,
	}); err != nil {
		return nil, err
	}
	metrics.ApprovalTransitions.WithLabelValues(model.AuditActionApprove).Inc()
	entry.ApprovedAt = &at
	entry.ApprovedBy = &actor.ID

	s.audit.Append(ctx, newAuditEntry(actor.ID, model.AuditActionApprove, id, map[string]interface{}{
		"employee_id": entry.EmployeeID,
		"total_hours": entry.TotalHours,
	}))
	resp := toTimeEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── Reject ──────────────────────

func (s *approvalService) Reject(ctx context.Context, actor Actor, id, reason string) (*dto.TimeEntryResponse, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.ErrMissingRejectionReason
	}

	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canApprove(entry.Employee) {
		return nil, pkgerrors.ErrUnauthorized
	}
	if !isPending(entry.Status) {
		return nil, pkgerrors.ErrInvalidStateTransition
	}

	emp, cls, err := s.coord.resolver.Resolve(ctx, entry.EmployeeID)
	if err != nil {
		return nil, err
	}

	// 被驳回的工时退出周累计：驳回与整周重算同一事务提交，重算失败则驳回一并回滚
	at := s.now()
	_, err = s.coord.run(ctx, actor.ID, emp, cls, overtime.WeekOf(entry.WorkDate), func(ctx context.Context, tx repository.TimeEntryRepository) ([]*model.AuditLog, error) {
		if err := s.transition(ctx, tx, model.AuditActionReject, entry, repository.StatusChange{
			From:    entry.Status,
			To:      model.EntryStatusRejected,
			ActorID: actor.ID,
			At:      at,
			Reason:  reason,
		}); err != nil {
			return nil, err
		}
		return []*model.AuditLog{newAuditEntry(actor.ID, model.AuditActionReject, id, map[string]interface{}{
			"employee_id": entry.EmployeeID,
			"reason":      reason,
		})}, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ApprovalTransitions.WithLabelValues(model.AuditActionReject).Inc()
	entry.RejectedAt = &at
	entry.RejectedBy = &actor.ID
	entry.RejectReason = reason

	resp := toTimeEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── ListPendingFor ──────────────────────

func (s *approvalService) ListPendingFor(ctx context.Context, actor Actor) ([]dto.TimeEntryResponse, error) {
	if err := validateID(actor.ID); err != nil {
		return nil, err
	}

	var managerID *string
	if !actor.IsAdmin() {
		managerID = &actor.ID
	}
	entries, err := s.repo.TimeEntry.ListPending(ctx, managerID)
	if err != nil {
		s.logger.Error("查询待审批记录失败", zap.String("approver_id", actor.ID), zap.Error(err))
		return nil, err
	}
	return toTimeEntryResponses(entries), nil
}

// ── 辅助函数 ──

func (s *approvalService) load(ctx context.Context, id string) (*model.TimeEntry, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	entry, err := s.repo.TimeEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		s.logger.Error("查询工时记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// transition 执行 CAS 状态迁移；状态已被并发修改时视为非法迁移
func (s *approvalService) transition(ctx context.Context, repo repository.TimeEntryRepository, action string, entry *model.TimeEntry, change repository.StatusChange) error {
	if err := repo.TransitionStatus(ctx, entry.TimeEntryID, change); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return pkgerrors.ErrInvalidStateTransition
		}
		s.logger.Error("更新审批状态失败",
			zap.String("action", action),
			zap.String("id", entry.TimeEntryID),
			zap.String("from", change.From),
			zap.String("to", change.To),
			zap.Error(err))
		return err
	}

	entry.Status = change.To
	entry.Version++
	actorID := change.ActorID
	entry.UpdatedBy = &actorID
	return nil
}

func isPending(status string) bool {
	return status == model.EntryStatusPending || status == entryStatusSubmittedAlias
}
