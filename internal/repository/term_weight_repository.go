package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// TermWeightRepository persists per-term weight overrides.
type TermWeightRepository struct {
	db *sqlx.DB
}

// NewTermWeightRepository constructs the repository.
func NewTermWeightRepository(db *sqlx.DB) *TermWeightRepository {
	return &TermWeightRepository{db: db}
}

// Find returns the override for subject and term, or nil when none is stored.
func (r *TermWeightRepository) Find(ctx context.Context, subjectID string, term models.Term) (*models.TermWeightOverride, error) {
	const query = `SELECT id, subject_id, term, assignment_weight, exam_weight, created_at, updated_at FROM term_weight_overrides WHERE subject_id = $1 AND term = $2`
	var override models.TermWeightOverride
	if err := r.db.GetContext(ctx, &override, query, subjectID, term); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find term weight: %w", err)
	}
	return &override, nil
}

// Upsert stores the override, replacing any existing one for the same subject and term.
func (r *TermWeightRepository) Upsert(ctx context.Context, override *models.TermWeightOverride) error {
	now := time.Now().UTC()
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	if override.CreatedAt.IsZero() {
		override.CreatedAt = now
	}
	override.UpdatedAt = now

	const query = `INSERT INTO term_weight_overrides (id, subject_id, term, assignment_weight, exam_weight, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (subject_id, term) DO UPDATE SET assignment_weight = EXCLUDED.assignment_weight, exam_weight = EXCLUDED.exam_weight, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, override.ID, override.SubjectID, override.Term, override.AssignmentWeight, override.ExamWeight, override.CreatedAt, override.UpdatedAt)
	if err := row.Scan(&override.ID, &override.CreatedAt); err != nil {
		return fmt.Errorf("upsert term weight: %w", err)
	}
	return nil
}

// Delete removes the override. It reports false when nothing was stored.
func (r *TermWeightRepository) Delete(ctx context.Context, subjectID string, term models.Term) (bool, error) {
	const query = `DELETE FROM term_weight_overrides WHERE subject_id = $1 AND term = $2`
	res, err := r.db.ExecContext(ctx, query, subjectID, term)
	if err != nil {
		return false, fmt.Errorf("delete term weight: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete term weight rows: %w", err)
	}
	return affected > 0, nil
}
