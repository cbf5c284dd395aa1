package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// StudentRepository handles student persistence and the current placement pointer.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, full_name, class_id, grade_id, active, created_at, updated_at`

// FindByID returns a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDs returns the students that exist among ids.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = ANY($1) ORDER BY id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students by id: %w", err)
	}
	return students, nil
}

// UpdatePlacement moves the listed students from fromClassID in a single
// guarded statement. It is the write used when the ledger transaction could
// not be committed. When any student is no longer placed in fromClassID the
// update is rolled back and ErrPlacementChanged is returned.
func (r *StudentRepository) UpdatePlacement(ctx context.Context, ids []string, fromClassID, classID, gradeID string) (affected int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin placement update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE students SET class_id = $1, grade_id = $2, updated_at = $3 WHERE id = ANY($4) AND class_id = $5`
	res, err := tx.ExecContext(ctx, query, classID, gradeID, time.Now().UTC(), pq.Array(ids), fromClassID)
	if err != nil {
		return 0, fmt.Errorf("update student placement: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update student placement rows: %w", err)
	}
	if affected != int64(len(ids)) {
		err = fmt.Errorf("%w: expected %d students in %s, matched %d", ErrPlacementChanged, len(ids), fromClassID, affected)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit placement update: %w", err)
	}
	return affected, nil
}
