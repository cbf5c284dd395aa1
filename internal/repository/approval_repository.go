package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// ApprovalRepository persists term approval state per class.
type ApprovalRepository struct {
	db *sqlx.DB
}

// NewApprovalRepository constructs the repository.
func NewApprovalRepository(db *sqlx.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Get returns the stored approval, or nil when the class/term was never toggled.
func (r *ApprovalRepository) Get(ctx context.Context, classID string, term models.Term) (*models.TermApproval, error) {
	const query = `SELECT id, class_id, term, is_approved, approved_by, approved_at, notes, updated_at FROM term_approvals WHERE class_id = $1 AND term = $2`
	var approval models.TermApproval
	if err := r.db.GetContext(ctx, &approval, query, classID, term); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get term approval: %w", err)
	}
	return &approval, nil
}

// Upsert writes the approval state for the class and term.
func (r *ApprovalRepository) Upsert(ctx context.Context, approval *models.TermApproval) error {
	if approval.ID == "" {
		approval.ID = uuid.NewString()
	}
	approval.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO term_approvals (id, class_id, term, is_approved, approved_by, approved_at, notes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (class_id, term) DO UPDATE SET is_approved = EXCLUDED.is_approved, approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, approval.ID, approval.ClassID, approval.Term, approval.IsApproved, approval.ApprovedBy, approval.ApprovedAt, approval.Notes, approval.UpdatedAt)
	if err := row.Scan(&approval.ID); err != nil {
		return fmt.Errorf("upsert term approval: %w", err)
	}
	return nil
}
