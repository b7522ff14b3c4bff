package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/repository"
)

// AuditRecordInput 后台审计记录输入
type AuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	Action           string
	TargetType       string
	TargetID         uint
	Object           string
	Method           string
	RequestID        string
	Detail           models.JSON
}

// AuditService 后台审计服务
type AuditService struct {
	repo repository.AuditLogRepository
}

// NewAuditService 创建后台审计服务
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 记录审计日志，缺少操作人或动作时忽略
func (s *AuditService) Record(input AuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorAdminID == 0 {
		return nil
	}
	if strings.TrimSpace(input.Action) == "" {
		return nil
	}

	item := &models.AdminAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		Action:           strings.TrimSpace(input.Action),
		TargetType:       strings.TrimSpace(input.TargetType),
		TargetID:         input.TargetID,
		Object:           strings.TrimSpace(input.Object),
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON:       input.Detail,
		CreatedAt:        time.Now(),
	}
	return s.repo.Create(item)
}

// RecordQuietly 记录审计日志，失败只写日志不影响主流程
func (s *AuditService) RecordQuietly(input AuditRecordInput) {
	if err := s.Record(input); err != nil {
		logger.Warnw("admin_audit_record_failed",
			"action", input.Action,
			"target_type", input.TargetType,
			"target_id", input.TargetID,
			"operator_admin_id", input.OperatorAdminID,
			"error", err,
		)
	}
}

// ListForAdmin 管理端查询审计日志
func (s *AuditService) ListForAdmin(filter repository.AuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	logs, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, ErrAuditLogFailed
	}
	return logs, total, nil
}
