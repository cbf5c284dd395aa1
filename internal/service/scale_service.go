package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/grading"
	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

type gradingSchemeReader interface {
	FindByID(ctx context.Context, id string) (*models.GradingScheme, error)
	FindDefault(ctx context.Context) (*models.GradingScheme, error)
}

// ScaleService loads grading schemes and resolves the band table per subject.
type ScaleService struct {
	schemes gradingSchemeReader
	logger  *zap.Logger
}

// NewScaleService constructs the scale service.
func NewScaleService(schemes gradingSchemeReader, logger *zap.Logger) *ScaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScaleService{schemes: schemes, logger: logger}
}

// LoadDefault returns the school default scheme, or nil when none is configured.
func (s *ScaleService) LoadDefault(ctx context.Context) (*models.GradingScheme, error) {
	scheme, err := s.schemes.FindDefault(ctx)
	if err != nil {
		s.logger.Error("failed to load default grading scheme", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load grading scheme")
	}
	return scheme, nil
}

// ResolveForSubject resolves the subject's scale given an already loaded default scheme.
func (s *ScaleService) ResolveForSubject(ctx context.Context, subject models.Subject, defaultScheme *models.GradingScheme) (models.ResolvedScale, error) {
	var subjectScheme *models.GradingScheme
	if subject.GradingSchemeID != nil && *subject.GradingSchemeID != "" {
		scheme, err := s.schemes.FindByID(ctx, *subject.GradingSchemeID)
		if err != nil {
			s.logger.Error("failed to load subject grading scheme", zap.String("subject_id", subject.ID), zap.Error(err))
			return models.ResolvedScale{}, appErrors.Internal(err, "failed to load grading scheme")
		}
		subjectScheme = scheme
	}
	return grading.ResolveScale(grading.ScaleSnapshot{SubjectScheme: subjectScheme, DefaultScheme: defaultScheme}), nil
}

// ResolveDefault resolves the scale used for overall grades.
func (s *ScaleService) ResolveDefault(defaultScheme *models.GradingScheme) models.ResolvedScale {
	return grading.ResolveScale(grading.ScaleSnapshot{DefaultScheme: defaultScheme})
}
