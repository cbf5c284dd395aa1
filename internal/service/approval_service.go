package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

type approvalStore interface {
	Get(ctx context.Context, classID string, term models.Term) (*models.TermApproval, error)
	Upsert(ctx context.Context, approval *models.TermApproval) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ApprovalService owns the per class and term visibility gate.
type ApprovalService struct {
	approvals approvalStore
	classes   classReader
	access    Authorizer
	audit     auditWriter
	cache     reportCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApprovalService constructs the approval service.
func NewApprovalService(approvals approvalStore, classes classReader, access Authorizer, audit auditWriter, cache reportCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ApprovalService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{
		approvals: approvals,
		classes:   classes,
		access:    access,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored approval or the default unapproved state.
func (s *ApprovalService) Get(ctx context.Context, classID string, term models.Term) (models.TermApproval, error) {
	approval, err := s.approvals.Get(ctx, classID, term)
	if err != nil {
		s.logger.Error("failed to load approval", zap.String("class_id", classID), zap.String("term", string(term)), zap.Error(err))
		return models.TermApproval{}, appErrors.Internal(err, "failed to load approval state")
	}
	if approval == nil {
		return models.TermApproval{ClassID: classID, Term: term}, nil
	}
	return *approval, nil
}

// GetForCaller returns the approval state after checking the caller may manage the class.
func (s *ApprovalService) GetForCaller(ctx context.Context, classID, rawTerm string, caller models.Caller) (models.TermApproval, error) {
	term, ok := models.ParseTerm(rawTerm)
	if !ok {
		return models.TermApproval{}, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if err := s.ensureClass(ctx, classID); err != nil {
		return models.TermApproval{}, err
	}
	ok, err := s.access.CanActOnClass(ctx, caller, classID)
	if err := authorize(caller, ok, err, "not allowed to view approvals for this class"); err != nil {
		return models.TermApproval{}, err
	}
	return s.Get(ctx, classID, term)
}

// ToggleApproval sets the approval state. Repeating the current state with
// the same notes writes nothing.
func (s *ApprovalService) ToggleApproval(ctx context.Context, req models.ToggleApprovalRequest, caller models.Caller) (*models.TermApproval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	term, ok := models.ParseTerm(req.Term)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if err := s.ensureClass(ctx, req.ClassID); err != nil {
		return nil, err
	}
	ok, err := s.access.CanActOnClass(ctx, caller, req.ClassID)
	if err := authorize(caller, ok, err, "not allowed to approve results for this class"); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, req.ClassID, term)
	if err != nil {
		return nil, err
	}
	if current.IsApproved == *req.IsApproved && sameNotes(current.Notes, req.Notes) {
		return &current, nil
	}

	next := current
	next.IsApproved = *req.IsApproved
	next.Notes = req.Notes
	if next.IsApproved {
		at := s.now()
		approver := caller.UserID
		next.ApprovedBy = &approver
		next.ApprovedAt = &at
	} else {
		next.ApprovedBy = nil
		next.ApprovedAt = nil
	}

	if err := s.approvals.Upsert(ctx, &next); err != nil {
		s.logger.Error("failed to store approval", zap.String("class_id", req.ClassID), zap.String("term", string(term)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to store approval state")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionApprovalToggle, "class", req.ClassID, current, next)
	if s.cache != nil {
		s.cache.InvalidateReports(ctx, req.ClassID, term)
	}
	return &next, nil
}

func (s *ApprovalService) ensureClass(ctx context.Context, classID string) error {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Internal(err, "failed to load class")
	}
	return nil
}

func sameNotes(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
