package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// GradedItemRepository reads graded items and the results recorded against them.
type GradedItemRepository struct {
	db *sqlx.DB
}

// NewGradedItemRepository constructs the repository.
func NewGradedItemRepository(db *sqlx.DB) *GradedItemRepository {
	return &GradedItemRepository{db: db}
}

// List returns graded items matching the filter.
func (r *GradedItemRepository) List(ctx context.Context, filter models.GradedItemFilter) ([]models.GradedItem, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, subject_id, class_id, term, title, max_points, category, created_at FROM graded_items WHERE 1=1`)

	var args []interface{}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		fmt.Fprintf(&query, " AND subject_id = $%d", len(args))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		fmt.Fprintf(&query, " AND class_id = $%d", len(args))
	}
	if filter.Term != "" {
		args = append(args, filter.Term)
		fmt.Fprintf(&query, " AND term = $%d", len(args))
	}
	query.WriteString(" ORDER BY id ASC")

	var items []models.GradedItem
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list graded items: %w", err)
	}
	return items, nil
}

// ResultsForStudent returns the student's results for the given items.
func (r *GradedItemRepository) ResultsForStudent(ctx context.Context, studentID string, itemIDs []string) ([]models.ResultRecord, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT graded_item_id, student_id, score, recorded_at FROM result_records WHERE student_id = $1 AND graded_item_id = ANY($2) ORDER BY graded_item_id ASC, recorded_at ASC`
	var results []models.ResultRecord
	if err := r.db.SelectContext(ctx, &results, query, studentID, pq.Array(itemIDs)); err != nil {
		return nil, fmt.Errorf("list result records: %w", err)
	}
	return results, nil
}
