package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"training_tracker/internal/access"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_SecondCallUpdatesDueDateOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	other := f.user(t, "other-admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Security Basics")
	svc := f.assignmentService()

	first, err := svc.Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID, DueDate: rfc3339(testNow.Add(24 * time.Hour))})
	require.NoError(t, err)

	d2 := testNow.Add(72 * time.Hour)
	second, err := svc.Assign(ctx, callerOf(other), AssignInput{UserID: emp.ID, CourseID: course.ID, DueDate: rfc3339(d2)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, admin.ID, second.AssignedByUserID)
	require.NotNil(t, second.DueDate)
	assert.True(t, d2.Equal(*second.DueDate))
	require.NotNil(t, second.User)
	assert.Equal(t, emp.Email, second.User.Email)

	all, err := svc.List(ctx, repository.AssignmentFilter{UserID: emp.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAssign_OmittedDueDateClearsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Ethics")
	svc := f.assignmentService()

	_, err := svc.Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID, DueDate: rfc3339(testNow)})
	require.NoError(t, err)
	a, err := svc.Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)
	assert.Nil(t, a.DueDate)
}

func TestAssignBulk_KeepsExistingAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adminA := f.user(t, "admin-a", model.RoleAdmin)
	adminB := f.user(t, "admin-b", model.RoleAdmin)
	u1 := f.user(t, "u1", model.RoleEmployee)
	u2 := f.user(t, "u2", model.RoleEmployee)
	u3 := f.user(t, "u3", model.RoleEmployee)
	course := f.course(t, "Onboarding")
	svc := f.assignmentService()

	existing, err := svc.Assign(ctx, callerOf(adminA), AssignInput{UserID: u2.ID, CourseID: course.ID})
	require.NoError(t, err)

	due := testNow.Add(48 * time.Hour)
	res, err := svc.AssignBulk(ctx, callerOf(adminB), BulkAssignInput{
		UserIDs:  []string{u1.ID, u2.ID, u3.ID},
		CourseID: course.ID,
		DueDate:  rfc3339(due),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Assignments, 3)

	byUser := map[string]model.CourseAssignment{}
	for _, a := range res.Assignments {
		byUser[a.UserID] = a
		require.NotNil(t, a.DueDate)
		assert.True(t, due.Equal(*a.DueDate))
	}
	assert.Equal(t, existing.ID, byUser[u2.ID].ID)
	assert.Equal(t, adminA.ID, byUser[u2.ID].AssignedByUserID)
	assert.Equal(t, adminB.ID, byUser[u1.ID].AssignedByUserID)
	assert.Equal(t, adminB.ID, byUser[u3.ID].AssignedByUserID)
}

func TestAssignBulk_UnknownUserDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Privacy")
	svc := f.assignmentService()

	res, err := svc.AssignBulk(ctx, callerOf(admin), BulkAssignInput{
		UserIDs:  []string{"missing", emp.ID, emp.ID},
		CourseID: course.ID,
	})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, emp.ID, res.Assignments[0].UserID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "missing", res.Failures[0].UserID)
	assert.True(t, errors.Is(res.Failures[0].Err, util.ErrNotFound))
}

func TestAssign_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Safety")
	svc := f.assignmentService()

	_, err := svc.Assign(ctx, nil, AssignInput{UserID: emp.ID, CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = svc.Assign(ctx, callerOf(emp), AssignInput{UserID: emp.ID, CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.AssignBulk(ctx, callerOf(emp), BulkAssignInput{UserIDs: []string{emp.ID}, CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.Assign(ctx, callerOf(admin), AssignInput{CourseID: course.ID})
	assert.True(t, util.IsValidation(err))

	_, err = svc.AssignBulk(ctx, callerOf(admin), BulkAssignInput{UserIDs: []string{}, CourseID: course.ID})
	assert.True(t, util.IsValidation(err))

	_, err = svc.Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: "nope"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = svc.Assign(ctx, callerOf(admin), AssignInput{UserID: "nobody", CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	_, err = f.courses.Updates(ctx, course.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	assert.True(t, util.IsValidation(err))

	all, err := svc.List(ctx, repository.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssign_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	u1 := f.user(t, "u1", model.RoleEmployee)
	u2 := f.user(t, "u2", model.RoleEmployee)
	c1 := f.course(t, "One")
	c2 := f.course(t, "Two")
	svc := f.assignmentService()
	caller := &access.Caller{ID: admin.ID, Role: model.RoleAdmin}

	for _, in := range []AssignInput{
		{UserID: u1.ID, CourseID: c1.ID},
		{UserID: u1.ID, CourseID: c2.ID},
		{UserID: u2.ID, CourseID: c1.ID},
	} {
		_, err := svc.Assign(ctx, caller, in)
		require.NoError(t, err)
	}

	byCourse, err := svc.List(ctx, repository.AssignmentFilter{CourseID: c1.ID})
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	pair, err := svc.List(ctx, repository.AssignmentFilter{UserID: u1.ID, CourseID: c2.ID})
	require.NoError(t, err)
	require.Len(t, pair, 1)
	assert.Equal(t, "Two", pair[0].Course.Title)
}

func TestAssign_ReportsEveryBadField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	svc := f.assignmentService()

	_, err := svc.Assign(ctx, callerOf(admin), AssignInput{DueDate: "June 1st"})
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)
	fields := make([]string, 0, len(v.Fields))
	for _, fe := range v.Fields {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"userId", "courseId", "dueDate"}, fields)

	_, err = svc.AssignBulk(ctx, callerOf(admin), BulkAssignInput{UserIDs: []string{"u"}, DueDate: "2025-13-01"})
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Fields, 2)
}
