package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

// Authorizer answers scope questions for a caller.
type Authorizer interface {
	CanActOnClass(ctx context.Context, caller models.Caller, classID string) (bool, error)
	CanActOnSubject(ctx context.Context, caller models.Caller, subjectID string) (bool, error)
	CanViewStudent(ctx context.Context, caller models.Caller, student models.Student) (bool, error)
}

type accessRepository interface {
	TeachesClass(ctx context.Context, userID, classID string) (bool, error)
	TeachesSubject(ctx context.Context, userID, subjectID string) (bool, error)
	GuardsStudent(ctx context.Context, userID, studentID string) (bool, error)
}

// AccessService implements Authorizer on top of teaching assignments and
// guardian links. Admins bypass every check.
type AccessService struct {
	repo   accessRepository
	logger *zap.Logger
}

// NewAccessService constructs the access service.
func NewAccessService(repo accessRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{repo: repo, logger: logger}
}

// CanActOnClass reports whether the caller may manage the class.
func (s *AccessService) CanActOnClass(ctx context.Context, caller models.Caller, classID string) (bool, error) {
	switch {
	case caller.Anonymous():
		return false, nil
	case caller.Role.IsAdmin():
		return true, nil
	case caller.Role == models.RoleTeacher:
		return s.check("class", classID, func() (bool, error) { return s.repo.TeachesClass(ctx, caller.UserID, classID) })
	default:
		return false, nil
	}
}

// CanActOnSubject reports whether the caller may configure the subject.
func (s *AccessService) CanActOnSubject(ctx context.Context, caller models.Caller, subjectID string) (bool, error) {
	switch {
	case caller.Anonymous():
		return false, nil
	case caller.Role.IsAdmin():
		return true, nil
	case caller.Role == models.RoleTeacher:
		return s.check("subject", subjectID, func() (bool, error) { return s.repo.TeachesSubject(ctx, caller.UserID, subjectID) })
	default:
		return false, nil
	}
}

// CanViewStudent reports whether the caller may read the student's records.
// Student accounts share their user id with the student record.
func (s *AccessService) CanViewStudent(ctx context.Context, caller models.Caller, student models.Student) (bool, error) {
	switch {
	case caller.Anonymous():
		return false, nil
	case caller.Role.IsAdmin():
		return true, nil
	case caller.Role == models.RoleTeacher:
		classID := student.CurrentClassID()
		if classID == "" {
			return false, nil
		}
		return s.check("class", classID, func() (bool, error) { return s.repo.TeachesClass(ctx, caller.UserID, classID) })
	case caller.Role == models.RoleStudent:
		return caller.UserID == student.ID, nil
	case caller.Role == models.RoleParent:
		return s.check("student", student.ID, func() (bool, error) { return s.repo.GuardsStudent(ctx, caller.UserID, student.ID) })
	default:
		return false, nil
	}
}

func (s *AccessService) check(kind, id string, fn func() (bool, error)) (bool, error) {
	ok, err := fn()
	if err != nil {
		s.logger.Error("access check failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		return false, appErrors.Internal(err, "failed to verify access")
	}
	return ok, nil
}

// authorize converts an Authorizer answer into the matching typed error.
func authorize(caller models.Caller, ok bool, err error, message string) error {
	if err != nil {
		return err
	}
	if caller.Anonymous() {
		return appErrors.ErrUnauthorized
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, message)
	}
	return nil
}
