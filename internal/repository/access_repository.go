package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AccessRepository answers scoping questions for non-admin callers.
type AccessRepository struct {
	db *sqlx.DB
}

// NewAccessRepository constructs the repository.
func NewAccessRepository(db *sqlx.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// TeachesClass reports whether the user holds any assignment in the class.
func (r *AccessRepository) TeachesClass(ctx context.Context, userID, classID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM teacher_assignments WHERE teacher_id = $1 AND class_id = $2)`
	return r.exists(ctx, "check class assignment", query, userID, classID)
}

// TeachesSubject reports whether the user is assigned to teach the subject in any class.
func (r *AccessRepository) TeachesSubject(ctx context.Context, userID, subjectID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM teacher_assignments WHERE teacher_id = $1 AND subject_id = $2)`
	return r.exists(ctx, "check subject assignment", query, userID, subjectID)
}

// GuardsStudent reports whether the user is a registered guardian of the student.
func (r *AccessRepository) GuardsStudent(ctx context.Context, userID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM guardians WHERE user_id = $1 AND student_id = $2)`
	return r.exists(ctx, "check guardian", query, userID, studentID)
}

func (r *AccessRepository) exists(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, args...); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
