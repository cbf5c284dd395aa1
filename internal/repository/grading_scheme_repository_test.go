package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradingSchemeRepositoryFindByIDLoadsBands(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradingSchemeRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, is_default, created_at, updated_at FROM grading_schemes WHERE id = $1")).
		WithArgs("scheme-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_default", "created_at", "updated_at"}).AddRow("scheme-1", "Science", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, scheme_id, label, min_percentage, max_percentage, sort_order FROM grade_bands WHERE scheme_id = $1 ORDER BY sort_order DESC, min_percentage DESC")).
		WithArgs("scheme-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheme_id", "label", "min_percentage", "max_percentage", "sort_order"}).
			AddRow("b1", "scheme-1", "PASS", 50.0, 100.0, 2).
			AddRow("b2", "scheme-1", "FAIL", 0.0, 49.99, 1))

	scheme, err := repo.FindByID(context.Background(), "scheme-1")
	require.NoError(t, err)
	require.NotNil(t, scheme)
	require.Len(t, scheme.Bands, 2)
	assert.Equal(t, "PASS", scheme.Bands[0].Label)
	assert.Equal(t, 2, scheme.Bands[0].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradingSchemeRepositoryFindDefaultMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradingSchemeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM grading_schemes WHERE is_default = TRUE")).
		WillReturnError(sql.ErrNoRows)

	scheme, err := repo.FindDefault(context.Background())
	require.NoError(t, err)
	assert.Nil(t, scheme)
}
