package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adobah666/edutrack-sub001/internal/models"
)

// GradingSchemeRepository loads grading schemes with their bands.
type GradingSchemeRepository struct {
	db *sqlx.DB
}

// NewGradingSchemeRepository constructs the repository.
func NewGradingSchemeRepository(db *sqlx.DB) *GradingSchemeRepository {
	return &GradingSchemeRepository{db: db}
}

// FindByID returns the scheme and its bands in stored order, or nil when absent.
func (r *GradingSchemeRepository) FindByID(ctx context.Context, id string) (*models.GradingScheme, error) {
	const query = `SELECT id, name, is_default, created_at, updated_at FROM grading_schemes WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindDefault returns the school-wide default scheme, or nil when none is flagged.
func (r *GradingSchemeRepository) FindDefault(ctx context.Context) (*models.GradingScheme, error) {
	const query = `SELECT id, name, is_default, created_at, updated_at FROM grading_schemes WHERE is_default = TRUE ORDER BY updated_at DESC LIMIT 1`
	return r.findOne(ctx, query)
}

func (r *GradingSchemeRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.GradingScheme, error) {
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get grading scheme: %w", err)
	}

	// Bands load best-first; the mapper's first match follows this order.
	const bandsQuery = `SELECT id, scheme_id, label, min_percentage, max_percentage, sort_order FROM grade_bands WHERE scheme_id = $1 ORDER BY sort_order DESC, min_percentage DESC`
	if err := r.db.SelectContext(ctx, &scheme.Bands, bandsQuery, scheme.ID); err != nil {
		return nil, fmt.Errorf("list grade bands: %w", err)
	}
	return &scheme, nil
}
