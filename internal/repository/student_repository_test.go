package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestStudentRepositoryUpdatePlacement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET class_id = $1, grade_id = $2, updated_at = $3 WHERE id = ANY($4) AND class_id = $5")).
		WithArgs("class-b", "grade-2", sqlmock.AnyArg(), sqlmock.AnyArg(), "class-a").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	affected, err := repo.UpdatePlacement(context.Background(), []string{"s1", "s2"}, "class-a", "class-b", "grade-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdatePlacementRollsBackWhenStudentMoved(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET class_id = $1, grade_id = $2, updated_at = $3 WHERE id = ANY($4) AND class_id = $5")).
		WithArgs("class-b", "grade-2", sqlmock.AnyArg(), sqlmock.AnyArg(), "class-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	affected, err := repo.UpdatePlacement(context.Background(), []string{"s1", "s2"}, "class-a", "class-b", "grade-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlacementChanged))
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	students, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}
