package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
	"github.com/adobah666/edutrack-sub001/internal/models"
)

// ErrPlacementChanged is returned by Promote when a locked student is no
// longer in the source class.
var ErrPlacementChanged = errors.New("student placement changed")

// ReconcilePlanner decides, under the student row lock, what to write.
type ReconcilePlanner func(student models.Student, entries []models.ClassHistoryEntry) (models.ReconcilePlan, error)

// ClassHistoryRepository persists the class placement ledger.
type ClassHistoryRepository struct {
	db *sqlx.DB
}

// NewClassHistoryRepository constructs the repository.
func NewClassHistoryRepository(db *sqlx.DB) *ClassHistoryRepository {
	return &ClassHistoryRepository{db: db}
}

const classHistoryColumns = `id, student_id, class_id, grade_id, academic_year, is_active, start_date, end_date, promoted_by, promoted_at, notes`

// ListByStudent returns every ledger entry for the student, active first.
func (r *ClassHistoryRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ClassHistoryEntry, error) {
	query := `SELECT ` + classHistoryColumns + ` FROM class_history WHERE student_id = $1 ORDER BY is_active DESC, start_date DESC, id ASC`
	var entries []models.ClassHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list class history: %w", err)
	}
	return entries, nil
}

// Reconcile locks the student, re-reads the ledger and applies whatever plan
// the planner returns. A plan that needs no write commits nothing.
func (r *ClassHistoryRepository) Reconcile(ctx context.Context, studentID string, planner ReconcilePlanner) (plan models.ReconcilePlan, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return plan, fmt.Errorf("begin class history repair: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var student models.Student
	lockQuery := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &student, lockQuery, studentID); err != nil {
		return plan, fmt.Errorf("lock student: %w", err)
	}

	var entries []models.ClassHistoryEntry
	listQuery := `SELECT ` + classHistoryColumns + ` FROM class_history WHERE student_id = $1 ORDER BY start_date ASC, id ASC`
	if err = tx.SelectContext(ctx, &entries, listQuery, studentID); err != nil {
		return plan, fmt.Errorf("list class history: %w", err)
	}

	plan, err = planner(student, entries)
	if err != nil {
		return plan, err
	}
	if !plan.NeedsWrite() {
		if err = tx.Rollback(); err != nil {
			return plan, fmt.Errorf("release class history lock: %w", err)
		}
		return plan, nil
	}

	if len(plan.Deactivate) > 0 {
		if err = deactivateEntries(ctx, tx, `id = ANY($2)`, plan.At, pq.Array(plan.Deactivate)); err != nil {
			return plan, err
		}
	}
	if plan.Insert != nil {
		if plan.Insert.ID == "" {
			plan.Insert.ID = uuid.NewString()
		}
		if err = insertEntry(ctx, tx, *plan.Insert); err != nil {
			return plan, err
		}
	}

	if err = tx.Commit(); err != nil {
		return plan, fmt.Errorf("commit class history repair: %w", err)
	}
	return plan, nil
}

// Promote moves students between classes in one transaction: placement is
// re-verified under lock, active entries are closed, new entries inserted and
// the placement pointer updated.
func (r *ClassHistoryRepository) Promote(ctx context.Context, params models.PromotionParams) (entries []models.ClassHistoryEntry, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin promotion: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := pq.Array(params.StudentIDs)

	var locked []struct {
		ID      string  `db:"id"`
		ClassID *string `db:"class_id"`
	}
	const lockQuery = `SELECT id, class_id FROM students WHERE id = ANY($1) ORDER BY id ASC FOR UPDATE`
	if err = tx.SelectContext(ctx, &locked, lockQuery, ids); err != nil {
		return nil, fmt.Errorf("lock students: %w", err)
	}
	if len(locked) != len(params.StudentIDs) {
		return nil, fmt.Errorf("%w: expected %d students, locked %d", ErrPlacementChanged, len(params.StudentIDs), len(locked))
	}
	for _, row := range locked {
		if row.ClassID == nil || *row.ClassID != params.FromClassID {
			return nil, fmt.Errorf("%w: student %s", ErrPlacementChanged, row.ID)
		}
	}

	if err = deactivateEntries(ctx, tx, `student_id = ANY($2)`, params.At, ids); err != nil {
		return nil, err
	}

	entries = ledger.PromotionEntries(params, uuid.NewString)
	for _, entry := range entries {
		if err = insertEntry(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	const placementQuery = `UPDATE students SET class_id = $1, grade_id = $2, updated_at = $3 WHERE id = ANY($4)`
	if _, err = tx.ExecContext(ctx, placementQuery, params.ToClassID, params.ToGradeID, params.At, ids); err != nil {
		return nil, fmt.Errorf("update student placement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit promotion: %w", err)
	}
	return entries, nil
}

func deactivateEntries(ctx context.Context, tx *sqlx.Tx, where string, at time.Time, arg interface{}) error {
	query := `UPDATE class_history SET is_active = FALSE, end_date = $1 WHERE ` + where + ` AND is_active = TRUE`
	if _, err := tx.ExecContext(ctx, query, at, arg); err != nil {
		return fmt.Errorf("deactivate class history: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sqlx.Tx, entry models.ClassHistoryEntry) error {
	const query = `INSERT INTO class_history (id, student_id, class_id, grade_id, academic_year, is_active, start_date, end_date, promoted_by, promoted_at, notes)
VALUES (:id, :student_id, :class_id, :grade_id, :academic_year, :is_active, :start_date, :end_date, :promoted_by, :promoted_at, :notes)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert class history: %w", err)
	}
	return nil
}
