package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/internal/repository"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/logger"
)

type promotionStore interface {
	Promote(ctx context.Context, params models.PromotionParams) ([]models.ClassHistoryEntry, error)
}

type placementStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
	UpdatePlacement(ctx context.Context, ids []string, fromClassID, classID, gradeID string) (int64, error)
}

// PromotionConfig toggles the placement-only fallback.
type PromotionConfig struct {
	FallbackEnabled bool
}

// PromotionService moves cohorts between classes while keeping the ledger and
// the placement pointer in step.
type PromotionService struct {
	history   promotionStore
	students  placementStore
	classes   classReader
	access    Authorizer
	audit     auditWriter
	cache     reportCacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PromotionConfig
	now       func() time.Time
}

// NewPromotionService constructs the promotion service.
func NewPromotionService(history promotionStore, students placementStore, classes classReader, access Authorizer, audit auditWriter, cache reportCacheInvalidator, metrics *MetricsService, validate *validator.Validate, log *zap.Logger, cfg PromotionConfig) *PromotionService {
	if validate == nil {
		validate = NewValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PromotionService{
		history:   history,
		students:  students,
		classes:   classes,
		access:    access,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    log,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PromoteStudents moves every listed student from one class to another.
// Precondition failures are returned as-is. A failed ledger transaction
// falls back to updating placement alone and reports Fallback=true.
func (s *PromotionService) PromoteStudents(ctx context.Context, req models.PromoteStudentsRequest, caller models.Caller) (*models.PromotionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}
	if caller.Anonymous() {
		return nil, appErrors.ErrUnauthorized
	}

	if _, err := s.loadClass(ctx, req.FromClassID, "source class not found"); err != nil {
		return nil, err
	}
	toClass, err := s.loadClass(ctx, req.ToClassID, "target class not found")
	if err != nil {
		return nil, err
	}
	if err := s.checkStudents(ctx, req); err != nil {
		return nil, err
	}

	ok, err := s.access.CanActOnClass(ctx, caller, req.FromClassID)
	if err := authorize(caller, ok, err, "not allowed to promote students from this class"); err != nil {
		return nil, err
	}

	params := models.PromotionParams{
		StudentIDs:   req.StudentIDs,
		FromClassID:  req.FromClassID,
		ToClassID:    toClass.ID,
		ToGradeID:    toClass.GradeID,
		AcademicYear: req.AcademicYear,
		Notes:        req.Notes,
		PromotedBy:   caller.UserID,
		At:           s.now(),
	}

	entries, err := s.history.Promote(ctx, params)
	switch {
	case err == nil:
		s.metrics.RecordPromotion(OutcomeSuccess)
		result := &models.PromotionResult{Entries: entries}
		s.finish(ctx, caller, params, result)
		return result, nil
	case errors.Is(err, repository.ErrPlacementChanged):
		s.metrics.RecordPromotion(OutcomeConflict)
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student placement changed during promotion")
	case !s.cfg.FallbackEnabled:
		s.metrics.RecordPromotion(OutcomeFailed)
		s.logger.Error("promotion transaction failed", zap.Strings("student_ids", req.StudentIDs), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to promote students")
	}

	return s.fallback(ctx, caller, params, err)
}

// fallback updates placement alone after the ledger transaction failed. The
// ledger catches up through read-time reconciliation.
func (s *PromotionService) fallback(ctx context.Context, caller models.Caller, params models.PromotionParams, cause error) (*models.PromotionResult, error) {
	if _, err := s.students.UpdatePlacement(ctx, params.StudentIDs, params.FromClassID, params.ToClassID, params.ToGradeID); err != nil {
		if errors.Is(err, repository.ErrPlacementChanged) {
			s.metrics.RecordPromotion(OutcomeConflict)
			s.logger.Warn("promotion fallback found moved students",
				zap.Strings("student_ids", params.StudentIDs),
				zap.NamedError("transaction_error", cause),
				zap.Error(err),
			)
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student placement changed during promotion")
		}
		s.metrics.RecordPromotion(OutcomeFailed)
		s.logger.Error("promotion fallback failed",
			zap.Strings("student_ids", params.StudentIDs),
			zap.NamedError("transaction_error", cause),
			zap.Error(err),
		)
		return nil, appErrors.Internal(err, "failed to promote students")
	}

	logger.Degraded(s.logger, "promotion.fallback", cause,
		zap.Strings("student_ids", params.StudentIDs),
		zap.String("from_class_id", params.FromClassID),
		zap.String("to_class_id", params.ToClassID),
	)
	s.metrics.RecordPromotion(OutcomeFallback)
	s.metrics.RecordDegraded("promotion.fallback")

	entries := ledger.PromotionEntries(params, uuid.NewString)
	for i := range entries {
		entries[i].Synthesized = true
	}
	result := &models.PromotionResult{Entries: entries, Fallback: true}
	s.finish(ctx, caller, params, result)
	return result, nil
}

func (s *PromotionService) finish(ctx context.Context, caller models.Caller, params models.PromotionParams, result *models.PromotionResult) {
	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionPromotion, "class", params.ToClassID,
		map[string]interface{}{"class_id": params.FromClassID},
		map[string]interface{}{
			"class_id":      params.ToClassID,
			"student_ids":   params.StudentIDs,
			"academic_year": params.AcademicYear,
			"fallback":      result.Fallback,
		},
	)
	if s.cache != nil {
		s.cache.InvalidateReports(ctx, params.FromClassID, "")
		s.cache.InvalidateReports(ctx, params.ToClassID, "")
	}
}

func (s *PromotionService) checkStudents(ctx context.Context, req models.PromoteStudentsRequest) error {
	students, err := s.students.FindByIDs(ctx, req.StudentIDs)
	if err != nil {
		s.logger.Error("failed to load students", zap.Strings("student_ids", req.StudentIDs), zap.Error(err))
		return appErrors.Internal(err, "failed to load students")
	}

	found := make(map[string]models.Student, len(students))
	for _, st := range students {
		found[st.ID] = st
	}
	var missing, misplaced []string
	for _, id := range req.StudentIDs {
		st, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if st.CurrentClassID() != req.FromClassID {
			misplaced = append(misplaced, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("students not found: %s", strings.Join(missing, ", ")))
	}
	if len(misplaced) > 0 {
		sort.Strings(misplaced)
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("students not in source class: %s", strings.Join(misplaced, ", ")))
	}
	return nil
}

func (s *PromotionService) loadClass(ctx context.Context, id, notFound string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, notFound)
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	return class, nil
}
