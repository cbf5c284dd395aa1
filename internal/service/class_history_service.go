package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/internal/repository"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/logger"
)

type classHistoryStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassHistoryEntry, error)
	Reconcile(ctx context.Context, studentID string, planner repository.ReconcilePlanner) (models.ReconcilePlan, error)
}

// ClassHistoryConfig toggles read-time reconciliation.
type ClassHistoryConfig struct {
	RepairOnRead bool
}

// ClassHistoryService serves a student's placement ledger and keeps it
// consistent with the student's current placement.
type ClassHistoryService struct {
	history  classHistoryStore
	students studentReader
	access   Authorizer
	audit    auditWriter
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ClassHistoryConfig
	now      func() time.Time
	repairs  singleflight.Group
}

// NewClassHistoryService constructs the class history service.
func NewClassHistoryService(history classHistoryStore, students studentReader, access Authorizer, audit auditWriter, metrics *MetricsService, log *zap.Logger, cfg ClassHistoryConfig) *ClassHistoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClassHistoryService{
		history:  history,
		students: students,
		access:   access,
		audit:    audit,
		metrics:  metrics,
		logger:   log,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetClassHistory returns the student's ledger. When the ledger has drifted
// from the student's placement it is repaired first; if the repair cannot be
// persisted a synthesized view is returned with Repaired=false.
func (s *ClassHistoryService) GetClassHistory(ctx context.Context, studentID string, caller models.Caller) (*models.ClassHistoryView, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanViewStudent(ctx, caller, *student)
	if err := authorize(caller, ok, err, "not allowed to view this student"); err != nil {
		return nil, err
	}

	entries, err := s.list(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !s.cfg.RepairOnRead || !ledger.Drifted(*student, entries) {
		ledger.SortHistory(entries)
		return &models.ClassHistoryView{StudentID: studentID, History: entries}, nil
	}

	plan, err := s.repair(ctx, studentID, caller)
	if err != nil {
		if errors.Is(err, ledger.ErrInconsistent) {
			return nil, s.inconsistent(studentID, err)
		}
		logger.Degraded(s.logger, "class_history.repair", err, zap.String("student_id", studentID))
		s.metrics.RecordLedgerRepair(OutcomeSynthesized)
		s.metrics.RecordDegraded("class_history.repair")
		return &models.ClassHistoryView{
			StudentID: studentID,
			History:   ledger.Synthesize(*student, entries, s.now()),
		}, nil
	}

	repaired, err := s.list(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ledger.SortHistory(repaired)
	return &models.ClassHistoryView{StudentID: studentID, History: repaired, Repaired: plan.NeedsWrite()}, nil
}

// RepairClassHistory reconciles the ledger explicitly. Failures are surfaced.
func (s *ClassHistoryService) RepairClassHistory(ctx context.Context, studentID string, caller models.Caller) (*models.ClassHistoryView, error) {
	if caller.Anonymous() {
		return nil, appErrors.ErrUnauthorized
	}
	if !caller.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can repair class history")
	}
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}

	plan, err := s.repair(ctx, studentID, caller)
	if err != nil {
		if errors.Is(err, ledger.ErrInconsistent) {
			return nil, s.inconsistent(studentID, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("class history repair failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to repair class history")
	}

	entries, err := s.list(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ledger.SortHistory(entries)
	return &models.ClassHistoryView{StudentID: studentID, History: entries, Repaired: plan.NeedsWrite()}, nil
}

// repair runs one reconciliation per student at a time within this process.
// Callers that arrive while a repair is in flight share its result.
func (s *ClassHistoryService) repair(ctx context.Context, studentID string, caller models.Caller) (models.ReconcilePlan, error) {
	v, err, _ := s.repairs.Do(studentID, func() (interface{}, error) {
		plan, err := s.history.Reconcile(ctx, studentID, func(student models.Student, entries []models.ClassHistoryEntry) (models.ReconcilePlan, error) {
			return ledger.PlanReconciliation(student, entries, s.now())
		})
		if err != nil {
			return models.ReconcilePlan{}, err
		}
		if !plan.NeedsWrite() {
			s.metrics.RecordLedgerRepair(OutcomeNoop)
			return plan, nil
		}
		s.metrics.RecordLedgerRepair(OutcomeRepaired)
		s.logger.Info("class history reconciled",
			zap.String("student_id", studentID),
			zap.String("action", string(plan.Action)),
			zap.Int("deactivated", len(plan.Deactivate)),
		)
		recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionLedgerRepair, "student", studentID, nil, plan)
		return plan, nil
	})
	if err != nil {
		return models.ReconcilePlan{}, err
	}
	return v.(models.ReconcilePlan), nil
}

func (s *ClassHistoryService) inconsistent(studentID string, err error) error {
	s.metrics.RecordLedgerRepair(OutcomeInconsistent)
	s.logger.Error("class history cannot be reconciled", zap.String("student_id", studentID), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrConsistency.Code, appErrors.ErrConsistency.Status, "class history conflicts with current placement")
}

func (s *ClassHistoryService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

func (s *ClassHistoryService) list(ctx context.Context, studentID string) ([]models.ClassHistoryEntry, error) {
	entries, err := s.history.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("failed to list class history", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load class history")
	}
	return entries, nil
}
