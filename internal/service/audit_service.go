package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/repository"
	pkgerrors "inv-timesheet/backend/pkg/errors"
	applogger "inv-timesheet/backend/pkg/logger"
	"inv-timesheet/backend/pkg/metrics"
)

// ── 审计模块业务错误 ──

var ErrInvalidAuditFilter = errors.New("审计查询时间范围无效")

// AuditService 审计日志接口
//
// Append 在主事务提交之后调用，失败只记录运维日志与指标，不向调用方返回错误。
type AuditService interface {
	Append(ctx context.Context, entry *model.AuditLog)
	List(ctx context.Context, actor Actor, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo         *repository.Repository
	writeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, writeTimeout time.Duration, logger *zap.Logger) AuditService {
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}
	return &auditService{
		repo:         repo,
		writeTimeout: writeTimeout,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Append ──────────────────────

func (s *auditService) Append(ctx context.Context, entry *model.AuditLog) {
	if entry == nil {
		return
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.now()
	}
	rid := applogger.RequestIDFrom(ctx)
	if rid != "" {
		if entry.Details == nil {
			entry.Details = map[string]interface{}{}
		}
		entry.Details["request_id"] = rid
	}

	// 主事务已提交：请求取消不应丢弃审计
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.repo.AuditLog.Create(writeCtx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.logger.Warn("写入审计日志失败",
			zap.String("actor_id", entry.ActorID),
			zap.String("action", entry.Action),
			zap.String("target_record_id", entry.TargetRecordID),
			zap.String("request_id", rid),
			zap.Error(err))
	}
}

// ────────────────────── List ──────────────────────

func (s *auditService) List(ctx context.Context, actor Actor, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, pkgerrors.ErrUnauthorized
	}

	filter := repository.AuditLogFilter{
		ActorID:        req.ActorID,
		TargetRecordID: req.TargetRecordID,
		Action:         req.Action,
		Offset:         req.GetOffset(),
		Limit:          req.GetPageSize(),
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, 0, ErrInvalidAuditFilter
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, 0, ErrInvalidAuditFilter
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, 0, ErrInvalidAuditFilter
	}

	logs, total, err := s.repo.AuditLog.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.AuditLogResponse{
			ID:             l.AuditLogID,
			ActorID:        l.ActorID,
			Action:         l.Action,
			TargetRecordID: l.TargetRecordID,
			Details:        l.Details,
			Timestamp:      l.OccurredAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return result, total, nil
}

// ── 审计条目构造 ──

func newAuditEntry(actorID, action, targetID string, details map[string]interface{}) *model.AuditLog {
	return &model.AuditLog{
		ActorID:        actorID,
		Action:         action,
		TargetRecordID: targetID,
		Details:        details,
	}
}
