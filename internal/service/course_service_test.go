package service

import (
	"context"
	"errors"
	"testing"

	"training_tracker/internal/config"
	"training_tracker/internal/model"
	"training_tracker/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) courseService(cfg *config.CoursesConfig) *CourseService {
	s := NewCourseService(f.courses, cfg)
	s.Now = fixedClock(testNow)
	return s
}

func TestCourseService_CreateListArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.courseService(&config.CoursesConfig{})

	created, err := svc.Create(ctx, CourseInput{
		Title:        "  Data Protection ",
		Category:     "Compliance",
		SkillLevel:   "Beginner",
		Mandatory:    true,
		ResourceType: model.ResourcePDF,
		URL:          ptr("https://example.com/gdpr.pdf"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Data Protection", created.Title)
	assert.True(t, created.IsActive)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Archive(ctx, created.ID))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// archived courses stay readable by id
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, svc.Archive(ctx, "missing"), util.ErrCourseNotFound)
}

func TestCourseService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.courseService(nil)

	_, err := svc.Create(context.Background(), CourseInput{
		Title:           " ",
		ResourceType:    "AUDIO",
		DurationMinutes: ptr(-5),
		URL:             ptr("not a url"),
	})
	require.True(t, util.IsValidation(err))

	var v *util.ValidationError
	require.True(t, errors.As(err, &v))
	fields := map[string]bool{}
	for _, fe := range v.Fields {
		fields[fe.Field] = true
	}
	for _, name := range []string{"title", "category", "skillLevel", "resourceType", "durationMinutes", "url"} {
		assert.True(t, fields[name], name)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCourseService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Old Title")
	svc := f.courseService(nil)

	updated, err := svc.Update(ctx, course.ID, CoursePatch{
		Title:           ptr("New Title"),
		DurationMinutes: ptr(30),
		Mandatory:       ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "Compliance", updated.Category)
	require.NotNil(t, updated.DurationMinutes)
	assert.Equal(t, 30, *updated.DurationMinutes)
	assert.False(t, updated.Mandatory)

	_, err = svc.Update(ctx, course.ID, CoursePatch{Title: ptr("")})
	assert.True(t, util.IsValidation(err))

	_, err = svc.Update(ctx, "missing", CoursePatch{Title: ptr("x")})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseService_GetDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", model.RoleAdmin)
	emp := f.user(t, "emp", model.RoleEmployee)
	course := f.course(t, "Detail")
	_, err := f.assignmentService().Assign(ctx, callerOf(admin), AssignInput{UserID: emp.ID, CourseID: course.ID})
	require.NoError(t, err)

	got, err := f.courseService(nil).Get(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Assignments, 1)
	require.NotNil(t, got.Assignments[0].User)
	assert.Equal(t, emp.Email, got.Assignments[0].User.Email)

	_, err = f.courseService(nil).Get(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseService_ProbesVideoDuration(t *testing.T) {
	f := newFixture(t)
	svc := f.courseService(&config.CoursesConfig{ProbeVideoDuration: true})
	var probed string
	svc.ProbeDuration = func(source string) (int, error) {
		probed = source
		return 12, nil
	}

	c, err := svc.Create(context.Background(), CourseInput{
		Title:        "Intro Video",
		Category:     "Onboarding",
		SkillLevel:   "Beginner",
		ResourceType: model.ResourceVideo,
		URL:          ptr("https://cdn.example.com/intro.mp4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/intro.mp4", probed)
	require.NotNil(t, c.DurationMinutes)
	assert.Equal(t, 12, *c.DurationMinutes)

	svc.ProbeDuration = func(string) (int, error) { return 0, errors.New("no ffprobe") }
	c, err = svc.Create(context.Background(), CourseInput{
		Title:        "Broken Video",
		Category:     "Onboarding",
		SkillLevel:   "Beginner",
		ResourceType: model.ResourceVideo,
		URL:          ptr("https://cdn.example.com/broken.mp4"),
	})
	require.NoError(t, err)
	assert.Nil(t, c.DurationMinutes)
}
