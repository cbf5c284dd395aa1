package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

func newApprovalFixture(allow bool) (*ApprovalService, *memDB, *invalidationStub) {
	db := newMemDB()
	db.addClass("class-a", "grade-1")
	cache := &invalidationStub{}
	svc := NewApprovalService(approvalStub{db}, classStub{db}, accessStub{allow: allow}, auditStub{db}, cache, nil, nil)
	return svc, db, cache
}

func TestApprovalServiceDefaultsToUnapproved(t *testing.T) {
	svc, _, _ := newApprovalFixture(true)

	approval, err := svc.Get(context.Background(), "class-a", models.TermFirst)
	require.NoError(t, err)
	assert.False(t, approval.IsApproved)
	assert.Nil(t, approval.ApprovedBy)
}

func TestApprovalServiceToggleStampsAndClears(t *testing.T) {
	svc, db, cache := newApprovalFixture(true)
	ctx := context.Background()

	approved, err := svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "FIRST", IsApproved: boolean(true)}, adminCaller)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	revoked, err := svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "FIRST", IsApproved: boolean(false)}, adminCaller)
	require.NoError(t, err)
	assert.False(t, revoked.IsApproved)
	assert.Nil(t, revoked.ApprovedBy)
	assert.Nil(t, revoked.ApprovedAt)

	assert.Equal(t, 2, db.approvalWrites)
	assert.Equal(t, []string{models.AuditActionApprovalToggle, models.AuditActionApprovalToggle}, db.auditActions())
	assert.Equal(t, []string{"class-a|FIRST", "class-a|FIRST"}, cache.calls)
}

func TestApprovalServiceToggleIsIdempotent(t *testing.T) {
	svc, db, _ := newApprovalFixture(true)
	ctx := context.Background()
	notes := "checked by board"

	req := models.ToggleApprovalRequest{ClassID: "class-a", Term: "SECOND", IsApproved: boolean(true), Notes: &notes}
	_, err := svc.ToggleApproval(ctx, req, adminCaller)
	require.NoError(t, err)
	again, err := svc.ToggleApproval(ctx, req, adminCaller)
	require.NoError(t, err)

	assert.True(t, again.IsApproved)
	assert.Equal(t, 1, db.approvalWrites)

	// revoking an approval that never existed writes nothing either
	_, err = svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "THIRD", IsApproved: boolean(false)}, adminCaller)
	require.NoError(t, err)
	assert.Equal(t, 1, db.approvalWrites)
}

func TestApprovalServiceToggleErrors(t *testing.T) {
	svc, _, _ := newApprovalFixture(false)
	ctx := context.Background()

	_, err := svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "FIRST", IsApproved: boolean(true)}, teacherCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	_, err = svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "missing", Term: "FIRST", IsApproved: boolean(true)}, teacherCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "SUMMER", IsApproved: boolean(true)}, teacherCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.ToggleApproval(ctx, models.ToggleApprovalRequest{ClassID: "class-a", Term: "FIRST"}, teacherCaller)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}
