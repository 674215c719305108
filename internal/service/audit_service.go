package service

import (
	"time"

	"github.com/tezgo/ops-backend/internal/logger"
	"github.com/tezgo/ops-backend/internal/models"
	"github.com/tezgo/ops-backend/internal/repository"
)

// Actor 操作者（用于审计归属）
type Actor struct {
	Role string
	ID   uint
}

// AuditService 操作审计服务
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record 写入一条审计记录。审计失败只记日志，不影响主流程。
func (s *AuditService) Record(entityType string, entityID uint, action string, actor Actor, before, after models.JSON) {
	if s == nil || s.auditRepo == nil {
		return
	}
	item := &models.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorRole:  actor.Role,
		ActorID:    actor.ID,
		Before:     before,
		After:      after,
		CreatedAt:  time.Now(),
	}
	if err := s.auditRepo.Create(item); err != nil {
		logger.Errorw("audit_record_failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

// List 查询审计日志
func (s *AuditService) List(filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	return s.auditRepo.List(filter)
}
