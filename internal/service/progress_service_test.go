package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"training_tracker/internal/model"
	"training_tracker/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProgress_NotAssigned(t *testing.T) {
	f := newFixture(t)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Unassigned")

	_, err := f.progressService(testNow).RecordProgress(context.Background(), callerOf(emp), course.ID, model.StatusInProgress)
	assert.ErrorIs(t, err, util.ErrNotAssigned)

	rows, err := f.progress.ListByUser(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordProgress_StartThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	t1 := testNow
	t2 := testNow.Add(3 * time.Hour)

	p, err := f.progressService(t1).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, p.Status)
	require.NotNil(t, p.StartedAt)
	assert.True(t, t1.Equal(*p.StartedAt))
	assert.Nil(t, p.CompletedAt)
	require.NotNil(t, p.Course)
	assert.Equal(t, "Course", p.Course.Title)

	// a repeated IN_PROGRESS keeps the original start
	p, err = f.progressService(t2).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, t1.Equal(*p.StartedAt))

	p, err = f.progressService(t2).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, p.Status)
	assert.True(t, t1.Equal(*p.StartedAt))
	require.NotNil(t, p.CompletedAt)
	assert.True(t, t2.Equal(*p.CompletedAt))

	a, err := f.assignments.FindByUserCourse(ctx, emp.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, a.StartedAt)
	assert.True(t, t1.Equal(*a.StartedAt))
}

func TestRecordProgress_DirectCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	p, err := f.progressService(testNow).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, p.StartedAt)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.StartedAt.Equal(*p.CompletedAt))
}

func TestRecordProgress_RegressionKeepsCompletedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.progressService(testNow).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusCompleted)
	require.NoError(t, err)
	p, err := f.progressService(testNow.Add(time.Hour)).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusNotStarted)
	require.NoError(t, err)

	assert.Equal(t, model.StatusNotStarted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, testNow.Equal(*p.CompletedAt))
}

func TestRecordProgress_Validation(t *testing.T) {
	f := newFixture(t)
	emp := f.user(t, "emp", model.RoleEmployee)
	svc := f.progressService(testNow)

	_, err := svc.RecordProgress(context.Background(), callerOf(emp), "", "DONE")
	require.True(t, util.IsValidation(err))
	assert.Len(t, err.(*util.ValidationError).Fields, 2)

	_, err = svc.RecordProgress(context.Background(), nil, "c", model.StatusCompleted)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestListProgress_SelfOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	peer := f.user(t, "peer", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)
	svc := f.progressService(testNow)
	_, err = svc.RecordProgress(ctx, callerOf(emp), course.ID, model.StatusInProgress)
	require.NoError(t, err)

	own, err := svc.List(ctx, callerOf(emp), "")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	viaAdmin, err := svc.List(ctx, callerOf(admin), emp.ID)
	require.NoError(t, err)
	assert.Len(t, viaAdmin, 1)

	_, err = svc.List(ctx, callerOf(peer), emp.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = svc.List(ctx, nil, emp.ID)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestRecordProgress_LateStartDoesNotMoveStartedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	completedAt := testNow.Add(time.Hour)
	_, err = f.progressService(completedAt).RecordProgress(ctx, callerOf(emp), course.ID, model.StatusCompleted)
	require.NoError(t, err)

	// a first IN_PROGRESS that read the row before the completion landed
	stale := &model.CourseProgress{UserID: emp.ID, CourseID: course.ID, Status: model.StatusInProgress, StartedAt: ptr(testNow)}
	stale.CreatedAt = testNow
	stale.UpdatedAt = testNow
	require.NoError(t, f.progress.Upsert(ctx, stale, []string{"status", "updated_at"}))

	p, err := f.progress.FindDetail(ctx, emp.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, p.Status)
	require.NotNil(t, p.StartedAt)
	assert.True(t, completedAt.Equal(*p.StartedAt))
	require.NotNil(t, p.CompletedAt)
	assert.True(t, completedAt.Equal(*p.CompletedAt))
}

func TestRecordProgress_ConcurrentFirstUpdatesAgreeOnStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Course")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	const workers = 8
	results := make([]*model.CourseProgress, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := model.StatusInProgress
			if i%2 == 1 {
				status = model.StatusCompleted
			}
			svc := f.progressService(testNow.Add(time.Duration(i) * time.Minute))
			results[i], errs[i] = svc.RecordProgress(ctx, callerOf(emp), course.ID, status)
		}(i)
	}
	wg.Wait()

	final, err := f.progress.FindDetail(ctx, emp.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, final.StartedAt)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i].StartedAt)
		assert.True(t, final.StartedAt.Equal(*results[i].StartedAt), "worker %d saw a different start", i)
	}

	a, err := f.assignments.FindByUserCourse(ctx, emp.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, a.StartedAt)
	assert.True(t, final.StartedAt.Equal(*a.StartedAt))
}
