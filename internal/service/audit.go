package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit appends an audit entry. Failures are logged and never surface
// to the caller.
func recordAudit(ctx context.Context, repo auditWriter, logger *zap.Logger, caller models.Caller, action, resource, resourceID string, oldValues, newValues interface{}) {
	if repo == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   action,
		Resource: resource,
	}
	if caller.UserID != "" {
		userID := caller.UserID
		entry.UserID = &userID
	}
	if resourceID != "" {
		id := resourceID
		entry.ResourceID = &id
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := repo.CreateAuditLog(ctx, entry); err != nil && logger != nil {
		logger.Warn("failed to write audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}
