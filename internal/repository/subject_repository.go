package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `s.id, s.code, s.name, s.default_assignment_weight, s.default_exam_weight, s.grading_scheme_id, s.created_at, s.updated_at`

// FindByID returns a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects s WHERE s.id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListByClass returns the subjects taught in a class ordered by code.
func (r *SubjectRepository) ListByClass(ctx context.Context, classID string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects s JOIN class_subjects cs ON cs.subject_id = s.id WHERE cs.class_id = $1 ORDER BY s.code ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}
