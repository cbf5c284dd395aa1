package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adobah666/edutrack-sub001/internal/grading"
	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

type classSubjectReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Subject, error)
}

type gradedItemReader interface {
	List(ctx context.Context, filter models.GradedItemFilter) ([]models.GradedItem, error)
	ResultsForStudent(ctx context.Context, studentID string, itemIDs []string) ([]models.ResultRecord, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type weightResolver interface {
	Resolve(ctx context.Context, subject models.Subject, term models.Term) (models.ResolvedWeights, error)
}

type scaleResolver interface {
	LoadDefault(ctx context.Context) (*models.GradingScheme, error)
	ResolveForSubject(ctx context.Context, subject models.Subject, defaultScheme *models.GradingScheme) (models.ResolvedScale, error)
	ResolveDefault(defaultScheme *models.GradingScheme) models.ResolvedScale
}

type approvalReader interface {
	Get(ctx context.Context, classID string, term models.Term) (models.TermApproval, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportServiceConfig tunes report assembly.
type ReportServiceConfig struct {
	MaxConcurrency int
	CacheTTL       time.Duration
}

// ReportService assembles term reports from weights, scales and graded records.
type ReportService struct {
	students  studentReader
	classes   classReader
	subjects  classSubjectReader
	items     gradedItemReader
	weights   weightResolver
	scales    scaleResolver
	approvals approvalReader
	access    Authorizer
	cache     reportCache
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service. cache and metrics may be nil.
func NewReportService(students studentReader, classes classReader, subjects classSubjectReader, items gradedItemReader, weights weightResolver, scales scaleResolver, approvals approvalReader, access Authorizer, cache reportCache, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &ReportService{
		students:  students,
		classes:   classes,
		subjects:  subjects,
		items:     items,
		weights:   weights,
		scales:    scales,
		approvals: approvals,
		access:    access,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// GetTermReport returns the student's report for a class and term. Callers
// outside staff scope only see results once the class/term is approved;
// before that they receive an empty report flagged as pending.
func (s *ReportService) GetTermReport(ctx context.Context, req models.TermReportRequest, caller models.Caller) (*models.TermReport, error) {
	scope := callerScope(caller)
	report, outcome, err := s.getTermReport(ctx, req, caller)
	if err != nil {
		outcome = OutcomeFailed
	}
	s.metrics.RecordReport(scope, outcome)
	return report, err
}

func (s *ReportService) getTermReport(ctx context.Context, req models.TermReportRequest, caller models.Caller) (*models.TermReport, string, error) {
	term, ok := models.ParseTerm(req.Term)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown term")
	}
	if caller.Anonymous() {
		return nil, "", appErrors.ErrUnauthorized
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Internal(err, "failed to load student")
	}

	classID := req.ClassID
	if classID == "" {
		classID = student.CurrentClassID()
	}
	if classID == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "student has no current class; classId is required")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, "", appErrors.Internal(err, "failed to load class")
	}

	if err := s.authorizeReport(ctx, caller, *student, classID); err != nil {
		return nil, "", err
	}

	approval, err := s.approvals.Get(ctx, classID, term)
	if err != nil {
		return nil, "", err
	}
	state := models.ApprovalState{
		IsApproved: approval.IsApproved,
		Pending:    !approval.IsApproved,
		ApprovedBy: approval.ApprovedBy,
		Notes:      approval.Notes,
	}
	if !caller.Role.IsStaff() && !approval.IsApproved {
		return &models.TermReport{
			StudentID:     student.ID,
			ClassID:       classID,
			Term:          term,
			Subjects:      []models.SubjectReport{},
			ApprovalState: models.ApprovalState{Pending: true},
		}, OutcomePending, nil
	}

	key := ReportCacheKey(classID, term, student.ID)
	if s.cache != nil {
		var cached models.TermReport
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			cached.ApprovalState = state
			return &cached, OutcomeCached, nil
		}
	}

	report, err := s.assemble(ctx, student.ID, classID, term)
	if err != nil {
		return nil, "", err
	}
	report.ApprovalState = state

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, report, s.cfg.CacheTTL)
	}
	return report, OutcomeSuccess, nil
}

func (s *ReportService) authorizeReport(ctx context.Context, caller models.Caller, student models.Student, classID string) error {
	var (
		ok  bool
		err error
	)
	if caller.Role.IsStaff() {
		ok, err = s.access.CanActOnClass(ctx, caller, classID)
	} else {
		ok, err = s.access.CanViewStudent(ctx, caller, student)
	}
	return authorize(caller, ok, err, "not allowed to view this report")
}

func (s *ReportService) assemble(ctx context.Context, studentID, classID string, term models.Term) (*models.TermReport, error) {
	subjects, err := s.subjects.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("failed to list class subjects", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	defaultScheme, err := s.scales.LoadDefault(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.SubjectReport, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i := range subjects {
		i := i
		g.Go(func() error {
			row, err := s.subjectReport(gctx, studentID, classID, term, subjects[i], defaultScheme)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.TermReport{
		StudentID: studentID,
		ClassID:   classID,
		Term:      term,
		Subjects:  rows,
	}

	sum, graded := 0.0, 0
	for _, row := range rows {
		if row.Score.HasAnyGrades {
			sum += row.Score.FinalPercentage
			graded++
		}
	}
	overallScale := s.scales.ResolveDefault(defaultScheme)
	if graded > 0 {
		avg := grading.Round(sum / float64(graded))
		report.OverallAverage = &avg
		report.OverallGrade = grading.MapGrade(avg, true, overallScale.Bands)
	} else {
		report.OverallGrade = grading.MapGrade(0, false, overallScale.Bands)
	}
	return report, nil
}

func (s *ReportService) subjectReport(ctx context.Context, studentID, classID string, term models.Term, subject models.Subject, defaultScheme *models.GradingScheme) (models.SubjectReport, error) {
	weights, err := s.weights.Resolve(ctx, subject, term)
	if err != nil {
		return models.SubjectReport{}, err
	}
	scale, err := s.scales.ResolveForSubject(ctx, subject, defaultScheme)
	if err != nil {
		return models.SubjectReport{}, err
	}

	items, err := s.items.List(ctx, models.GradedItemFilter{SubjectID: subject.ID, ClassID: classID, Term: term})
	if err != nil {
		s.logger.Error("failed to list graded items", zap.String("subject_id", subject.ID), zap.Error(err))
		return models.SubjectReport{}, appErrors.Internal(err, "failed to load graded items")
	}
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	results, err := s.items.ResultsForStudent(ctx, studentID, itemIDs)
	if err != nil {
		s.logger.Error("failed to list results", zap.String("subject_id", subject.ID), zap.Error(err))
		return models.SubjectReport{}, appErrors.Internal(err, "failed to load results")
	}

	score := grading.Aggregate(grading.AggregateInput{Items: items, Results: results, Weights: weights})
	return models.SubjectReport{
		SubjectID:   subject.ID,
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		Weights:     weights,
		Score:       score,
		Grade:       grading.MapGrade(score.FinalPercentage, score.HasAnyGrades, scale.Bands),
		ScaleSource: scale.Source,
	}, nil
}

func callerScope(caller models.Caller) string {
	if caller.Role.IsStaff() {
		return "staff"
	}
	return "student"
}
