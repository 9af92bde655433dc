// api/service/audit_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/audit"
	"github.com/strafeup/permissions/api/dao"
	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/pdp/engine"
)

// IAuditService defines the interface for reading the audit trail
type IAuditService interface {
	QueryAuditLogs(ctx context.Context, actingUserID int64, query audit.Query) ([]audit.AuditLog, error)
}

// AuditService exposes audit entries to global admins
type AuditService struct {
	users        dao.UserDirectory
	evaluator    *engine.Evaluator
	auditService audit.Service
}

var _ IAuditService = &AuditService{}

func NewAuditService(users dao.UserDirectory, evaluator *engine.Evaluator, auditService audit.Service) *AuditService {
	return &AuditService{
		users:        users,
		evaluator:    evaluator,
		auditService: auditService,
	}
}

func (s *AuditService) QueryAuditLogs(ctx context.Context, actingUserID int64, query audit.Query) ([]audit.AuditLog, error) {
	start := time.Now()

	if !query.To.IsZero() && query.To.Before(query.From) {
		return nil, fmt.Errorf("to precedes from: %w", perm_errors.ErrInvalidQuery)
	}

	user, err := s.users.GetUser(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	admin, err := s.evaluator.IsGlobalAdmin(ctx, user)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, fmt.Errorf("user %d cannot read the audit trail: %w", actingUserID, perm_errors.ErrForbidden)
	}

	logs, err := s.auditService.QueryLogs(ctx, query)
	if err != nil {
		logger.Error("Error querying audit logs", zap.Error(err), zap.Int64("userID", actingUserID))
		return nil, err
	}

	logger.Info("Audit logs queried",
		zap.Int64("userID", actingUserID),
		zap.Int("count", len(logs)),
		zap.Duration("duration", time.Since(start)))
	return logs, nil
}
