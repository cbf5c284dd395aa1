package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/grading"
	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type termWeightStore interface {
	Find(ctx context.Context, subjectID string, term models.Term) (*models.TermWeightOverride, error)
	Upsert(ctx context.Context, override *models.TermWeightOverride) error
	Delete(ctx context.Context, subjectID string, term models.Term) (bool, error)
}

type reportCacheInvalidator interface {
	InvalidateReports(ctx context.Context, classID string, term models.Term)
}

// WeightService resolves and maintains component weights per subject and term.
type WeightService struct {
	subjects  subjectReader
	overrides termWeightStore
	access    Authorizer
	audit     auditWriter
	cache     reportCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	tolerance float64
}

// NewWeightService constructs the weight service.
func NewWeightService(subjects subjectReader, overrides termWeightStore, access Authorizer, audit auditWriter, cache reportCacheInvalidator, validate *validator.Validate, logger *zap.Logger, tolerance float64) *WeightService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tolerance <= 0 {
		tolerance = grading.DefaultWeightTolerance
	}
	return &WeightService{
		subjects:  subjects,
		overrides: overrides,
		access:    access,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		tolerance: tolerance,
	}
}

// Resolve returns the effective weights of subject for term. Stored pairs
// that break the sum invariant are reported as a consistency error.
func (s *WeightService) Resolve(ctx context.Context, subject models.Subject, term models.Term) (models.ResolvedWeights, error) {
	override, err := s.overrides.Find(ctx, subject.ID, term)
	if err != nil {
		s.logger.Error("failed to load term weight", zap.String("subject_id", subject.ID), zap.String("term", string(term)), zap.Error(err))
		return models.ResolvedWeights{}, appErrors.Internal(err, "failed to load term weights")
	}
	resolved, err := grading.ResolveWeights(grading.WeightSnapshot{Subject: subject, Term: term, Override: override}, s.tolerance)
	if err != nil {
		s.logger.Error("stored weights violate invariant", zap.String("subject_id", subject.ID), zap.String("term", string(term)), zap.Error(err))
		return models.ResolvedWeights{}, appErrors.Wrap(err, appErrors.ErrConsistency.Code, appErrors.ErrConsistency.Status, "stored weights for subject are invalid")
	}
	return resolved, nil
}

// SetTermWeight stores a per-term override for the subject.
func (s *WeightService) SetTermWeight(ctx context.Context, req models.SetTermWeightRequest, caller models.Caller) (*models.TermWeightOverride, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term weight payload")
	}
	term, ok := models.ParseTerm(req.Term)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if err := grading.ValidatePair(*req.AssignmentWeight, *req.ExamWeight, s.tolerance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "weights must be within [0,1] and sum to 1")
	}

	subject, err := s.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	ok, err = s.access.CanActOnSubject(ctx, caller, subject.ID)
	if err := authorize(caller, ok, err, "not allowed to configure this subject"); err != nil {
		return nil, err
	}

	previous, err := s.overrides.Find(ctx, subject.ID, term)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load term weights")
	}

	override := &models.TermWeightOverride{
		SubjectID:        subject.ID,
		Term:             term,
		AssignmentWeight: *req.AssignmentWeight,
		ExamWeight:       *req.ExamWeight,
	}
	if err := s.overrides.Upsert(ctx, override); err != nil {
		s.logger.Error("failed to store term weight", zap.String("subject_id", subject.ID), zap.String("term", string(term)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to store term weights")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionTermWeightSet, "subject", subject.ID, previous, override)
	s.invalidate(ctx, term)
	return override, nil
}

// DeleteTermWeight removes the override so the subject defaults apply again.
func (s *WeightService) DeleteTermWeight(ctx context.Context, subjectID, rawTerm string, caller models.Caller) error {
	term, ok := models.ParseTerm(rawTerm)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	ok, err = s.access.CanActOnSubject(ctx, caller, subject.ID)
	if err := authorize(caller, ok, err, "not allowed to configure this subject"); err != nil {
		return err
	}

	deleted, err := s.overrides.Delete(ctx, subject.ID, term)
	if err != nil {
		s.logger.Error("failed to delete term weight", zap.String("subject_id", subject.ID), zap.String("term", string(term)), zap.Error(err))
		return appErrors.Internal(err, "failed to delete term weights")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "term weight override not found")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionTermWeightDelete, "subject", subject.ID, map[string]string{"term": string(term)}, nil)
	s.invalidate(ctx, term)
	return nil
}

func (s *WeightService) loadSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Internal(err, "failed to load subject")
	}
	return subject, nil
}

func (s *WeightService) invalidate(ctx context.Context, term models.Term) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateReports(ctx, "", term)
}
