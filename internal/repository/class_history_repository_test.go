package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobah666/edutrack-sub001/internal/ledger"
	"github.com/adobah666/edutrack-sub001/internal/models"
)

var studentRowColumns = []string{"id", "full_name", "class_id", "grade_id", "active", "created_at", "updated_at"}

var historyRowColumns = []string{"id", "student_id", "class_id", "grade_id", "academic_year", "is_active", "start_date", "end_date", "promoted_by", "promoted_at", "notes"}

func TestClassHistoryRepositoryReconcileReinstates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassHistoryRepository(db)

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, class_id, grade_id, active, created_at, updated_at FROM students WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("s1", "Ada", "class-b", "grade-2", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_history WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(historyRowColumns).
			AddRow("h1", "s1", "class-a", "grade-1", "2023-2024", true, now.AddDate(-1, 0, 0), nil, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_history SET is_active = FALSE, end_date = $1 WHERE id = ANY($2) AND is_active = TRUE")).
		WithArgs(now, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	plan, err := repo.Reconcile(context.Background(), "s1", func(student models.Student, entries []models.ClassHistoryEntry) (models.ReconcilePlan, error) {
		return ledger.PlanReconciliation(student, entries, now)
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileReinstate, plan.Action)
	require.NotNil(t, plan.Insert)
	assert.NotEmpty(t, plan.Insert.ID)
	assert.Equal(t, "class-b", plan.Insert.ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassHistoryRepositoryReconcileAlreadyRepaired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassHistoryRepository(db)

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("s1", "Ada", "class-b", "grade-2", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_history WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(historyRowColumns).
			AddRow("h2", "s1", "class-b", "grade-2", "2024-2025", true, now.AddDate(0, -1, 0), nil, nil, nil, nil))
	mock.ExpectRollback()

	plan, err := repo.Reconcile(context.Background(), "s1", func(student models.Student, entries []models.ClassHistoryEntry) (models.ReconcilePlan, error) {
		return ledger.PlanReconciliation(student, entries, now)
	})
	require.NoError(t, err)
	assert.False(t, plan.NeedsWrite())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassHistoryRepositoryReconcilePlannerErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassHistoryRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("s1", "Ada", nil, nil, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_history")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(historyRowColumns).
			AddRow("h1", "s1", "class-a", "grade-1", "2024-2025", true, now, nil, nil, nil, nil))
	mock.ExpectRollback()

	_, err := repo.Reconcile(context.Background(), "s1", func(student models.Student, entries []models.ClassHistoryEntry) (models.ReconcilePlan, error) {
		return ledger.PlanReconciliation(student, entries, now)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInconsistent))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassHistoryRepositoryPromote(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassHistoryRepository(db)

	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	params := models.PromotionParams{
		StudentIDs:   []string{"s1", "s2"},
		FromClassID:  "class-a",
		ToClassID:    "class-b",
		ToGradeID:    "grade-2",
		AcademicYear: "2025-2026",
		PromotedBy:   "admin-1",
		At:           at,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id FROM students WHERE id = ANY($1) ORDER BY id ASC FOR UPDATE")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id"}).AddRow("s1", "class-a").AddRow("s2", "class-a"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_history SET is_active = FALSE, end_date = $1 WHERE student_id = ANY($2) AND is_active = TRUE")).
		WithArgs(at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_history")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_history")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET class_id = $1, grade_id = $2, updated_at = $3 WHERE id = ANY($4)")).
		WithArgs("class-b", "grade-2", at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	entries, err := repo.Promote(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s1", entries[0].StudentID)
	assert.Equal(t, "class-b", entries[1].ClassID)
	assert.True(t, entries[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassHistoryRepositoryPromotePlacementChanged(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassHistoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id"}).AddRow("s1", "class-a").AddRow("s2", "class-c"))
	mock.ExpectRollback()

	_, err := repo.Promote(context.Background(), models.PromotionParams{
		StudentIDs:  []string{"s1", "s2"},
		FromClassID: "class-a",
		ToClassID:   "class-b",
		At:          time.Now(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlacementChanged))
	assert.NoError(t, mock.ExpectationsWereMet())
}
