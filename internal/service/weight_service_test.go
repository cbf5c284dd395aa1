package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

func newWeightFixture(allow bool) (*WeightService, *memDB, *invalidationStub) {
	db := newMemDB()
	db.subjects["math"] = models.Subject{ID: "math", Code: "MTH", Name: "Mathematics", DefaultAssignmentWeight: 0.3, DefaultExamWeight: 0.7}
	cache := &invalidationStub{}
	svc := NewWeightService(subjectStub{db}, overrideStub{db}, accessStub{allow: allow}, auditStub{db}, cache, nil, nil, 0)
	return svc, db, cache
}

func TestWeightServiceOverrideAppliesOnlyToItsTerm(t *testing.T) {
	svc, db, cache := newWeightFixture(true)
	ctx := context.Background()

	_, err := svc.SetTermWeight(ctx, models.SetTermWeightRequest{SubjectID: "math", Term: "first", AssignmentWeight: float(0.5), ExamWeight: float(0.5)}, adminCaller)
	require.NoError(t, err)

	subject := db.subjects["math"]
	first, err := svc.Resolve(ctx, subject, models.TermFirst)
	require.NoError(t, err)
	assert.Equal(t, 0.5, first.AssignmentWeight)
	assert.Equal(t, 0.5, first.ExamWeight)
	assert.Equal(t, models.WeightSourceTermOverride, first.Source)

	second, err := svc.Resolve(ctx, subject, models.TermSecond)
	require.NoError(t, err)
	assert.Equal(t, 0.3, second.AssignmentWeight)
	assert.Equal(t, 0.7, second.ExamWeight)

	assert.Equal(t, []string{models.AuditActionTermWeightSet}, db.auditActions())
	assert.Equal(t, []string{"|FIRST"}, cache.calls)
}

func TestWeightServiceRejectsInvalidPairs(t *testing.T) {
	svc, db, _ := newWeightFixture(true)

	cases := []struct {
		name       string
		assignment float64
		exam       float64
	}{
		{name: "sum too high", assignment: 0.6, exam: 0.6},
		{name: "sum too low", assignment: 0.2, exam: 0.3},
		{name: "negative", assignment: -0.5, exam: 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetTermWeight(context.Background(), models.SetTermWeightRequest{SubjectID: "math", Term: "FIRST", AssignmentWeight: float(tc.assignment), ExamWeight: float(tc.exam)}, adminCaller)
			require.Error(t, err)
			assert.True(t, appErrors.IsCode(err, appErrors.ErrInvalidWeights.Code))
		})
	}
	assert.Empty(t, db.overrides)
}

func TestWeightServiceValidatesInput(t *testing.T) {
	svc, _, _ := newWeightFixture(true)
	ctx := context.Background()

	_, err := svc.SetTermWeight(ctx, models.SetTermWeightRequest{SubjectID: "math", Term: "FIFTH", AssignmentWeight: float(0.5), ExamWeight: float(0.5)}, adminCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.SetTermWeight(ctx, models.SetTermWeightRequest{SubjectID: "math", Term: "FIRST", AssignmentWeight: float(0.5)}, adminCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.SetTermWeight(ctx, models.SetTermWeightRequest{SubjectID: "missing", Term: "FIRST", AssignmentWeight: float(0.5), ExamWeight: float(0.5)}, adminCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestWeightServiceRequiresSubjectAccess(t *testing.T) {
	svc, db, _ := newWeightFixture(false)

	_, err := svc.SetTermWeight(context.Background(), models.SetTermWeightRequest{SubjectID: "math", Term: "FIRST", AssignmentWeight: float(0.5), ExamWeight: float(0.5)}, teacherCaller)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))
	assert.Empty(t, db.overrides)

	_, err = svc.SetTermWeight(context.Background(), models.SetTermWeightRequest{SubjectID: "math", Term: "FIRST", AssignmentWeight: float(0.5), ExamWeight: float(0.5)}, models.Caller{})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestWeightServiceDeleteTermWeight(t *testing.T) {
	svc, db, _ := newWeightFixture(true)
	ctx := context.Background()

	err := svc.DeleteTermWeight(ctx, "math", "SECOND", adminCaller)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	db.overrides[overrideKey("math", models.TermSecond)] = models.TermWeightOverride{SubjectID: "math", Term: models.TermSecond, AssignmentWeight: 0.5, ExamWeight: 0.5}
	require.NoError(t, svc.DeleteTermWeight(ctx, "math", "second", adminCaller))

	resolved, err := svc.Resolve(ctx, db.subjects["math"], models.TermSecond)
	require.NoError(t, err)
	assert.Equal(t, models.WeightSourceSubjectDefault, resolved.Source)
}

func TestWeightServiceStoredInvalidOverrideIsConsistencyError(t *testing.T) {
	svc, db, _ := newWeightFixture(true)
	db.overrides[overrideKey("math", models.TermThird)] = models.TermWeightOverride{SubjectID: "math", Term: models.TermThird, AssignmentWeight: 0.9, ExamWeight: 0.9}

	_, err := svc.Resolve(context.Background(), db.subjects["math"], models.TermThird)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConsistency.Code))
}
