package service

import (
	"context"
	"testing"
	"time"

	"training_tracker/internal/access"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fixture struct {
	db          *gorm.DB
	users       *repository.UserRepository
	courses     *repository.CourseRepository
	assignments *repository.AssignmentRepository
	progress    *repository.ProgressRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &fixture{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		progress:    repository.NewProgressRepository(db),
	}
}

func (f *fixture) user(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) course(t *testing.T, title string) *model.Course {
	t.Helper()
	c := &model.Course{
		Title:        title,
		Category:     "Compliance",
		SkillLevel:   "Beginner",
		Mandatory:    true,
		ResourceType: model.ResourcePDF,
		IsActive:     true,
	}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func (f *fixture) assignmentService() *AssignmentService {
	s := NewAssignmentService(f.assignments, f.users, f.courses)
	s.Now = fixedClock(testNow)
	return s
}

func (f *fixture) progressService(now time.Time) *ProgressService {
	s := NewProgressService(f.progress, f.assignments)
	s.Now = fixedClock(now)
	return s
}

func callerOf(u *model.User) *access.Caller {
	return &access.Caller{ID: u.ID, Role: u.Role}
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

func ptr[T any](v T) *T {
	return &v
}
