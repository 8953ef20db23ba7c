package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/availability"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/internal/repository"
	appErrors "github.com/noah-isme/roomsched-api/pkg/errors"
)

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// parsePeriod turns wire dates and blocks into an availability query.
func parsePeriod(start, end string, blocks models.DayBlockSet) (availability.Query, error) {
	from, err := models.ParseDate(strings.TrimSpace(start))
	if err != nil {
		return availability.Query{}, validationError(err, "start date must use YYYY-MM-DD")
	}
	to, err := models.ParseDate(strings.TrimSpace(end))
	if err != nil {
		return availability.Query{}, validationError(err, "end date must use YYYY-MM-DD")
	}
	if err := availability.ValidatePeriod(from, to, blocks); err != nil {
		return availability.Query{}, validationError(err, err.Error())
	}
	return availability.Query{Start: from, End: to, DayBlocks: blocks}, nil
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// storeError maps repository sentinels onto API errors.
func storeError(err error, entity, action string) *appErrors.Error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, entity+" already exists")
	case errors.Is(err, repository.ErrInUse):
		return appErrors.Clone(appErrors.ErrConflict, entity+" is still referenced")
	}
	return internalError(err, "failed to "+action+" "+entity)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// emitAudit persists an audit row. Failures are logged, never returned.
func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, actor *models.JWTClaims, action, resource, resourceID string, oldValues, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  resource + "-service",
	}
	if actor != nil {
		entry.UserID = &actor.UserID
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}
