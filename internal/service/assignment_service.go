package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"training_tracker/internal/access"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"
	"training_tracker/pkg/logger"
	"training_tracker/pkg/monitoring"
	"training_tracker/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignInput is one assignment request. DueDate is RFC 3339; empty means none.
type AssignInput struct {
	UserID   string
	CourseID string
	DueDate  string
}

type BulkAssignInput struct {
	UserIDs  []string
	CourseID string
	DueDate  string
}

// BulkFailure reports one user id that could not be assigned.
type BulkFailure struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
	Err    error  `json:"-"`
}

// BulkAssignResult holds the assignments that were written and the ids that
// failed. Each id is upserted on its own; nothing is rolled back.
type BulkAssignResult struct {
	Assignments []model.CourseAssignment `json:"assignments"`
	Failures    []BulkFailure            `json:"failures"`
}

type AssignmentService struct {
	AssignmentRepo *repository.AssignmentRepository
	UserRepo       *repository.UserRepository
	CourseRepo     *repository.CourseRepository
	Now            func() time.Time
}

func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, userRepo *repository.UserRepository, courseRepo *repository.CourseRepository) *AssignmentService {
	return &AssignmentService{
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		CourseRepo:     courseRepo,
		Now:            time.Now,
	}
}

// Assign creates the (user, course) assignment or updates the due date of the
// existing one. The assigner is recorded only on insert.
func (s *AssignmentService) Assign(ctx context.Context, caller *access.Caller, in AssignInput) (*model.CourseAssignment, error) {
	if err := access.Check(caller, access.Admin); err != nil {
		return nil, err
	}

	v := &util.ValidationError{}
	if strings.TrimSpace(in.UserID) == "" {
		v.Add("userId", "is required")
	}
	if strings.TrimSpace(in.CourseID) == "" {
		v.Add("courseId", "is required")
	}
	dueDate := v.OptionalTime("dueDate", in.DueDate)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.checkCourse(ctx, in.CourseID); err != nil {
		return nil, err
	}
	return s.assignOne(ctx, caller, in.UserID, in.CourseID, dueDate)
}

// AssignBulk applies Assign once per distinct user id. A failing id is
// reported in Failures and does not stop the remaining ids.
func (s *AssignmentService) AssignBulk(ctx context.Context, caller *access.Caller, in BulkAssignInput) (*BulkAssignResult, error) {
	if err := access.Check(caller, access.Admin); err != nil {
		return nil, err
	}

	v := &util.ValidationError{}
	if len(in.UserIDs) == 0 {
		v.Add("userIds", "must contain at least one user id")
	}
	for i, id := range in.UserIDs {
		if strings.TrimSpace(id) == "" {
			v.Add(fmt.Sprintf("userIds[%d]", i), "is required")
		}
	}
	if strings.TrimSpace(in.CourseID) == "" {
		v.Add("courseId", "is required")
	}
	dueDate := v.OptionalTime("dueDate", in.DueDate)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.checkCourse(ctx, in.CourseID); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "assignment.bulk",
		attribute.String("course.id", in.CourseID),
		attribute.Int("bulk.size", len(in.UserIDs)),
	)
	defer span.End()

	result := &BulkAssignResult{
		Assignments: make([]model.CourseAssignment, 0, len(in.UserIDs)),
		Failures:    []BulkFailure{},
	}
	seen := make(map[string]bool, len(in.UserIDs))
	for _, userID := range in.UserIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		a, err := s.assignOne(ctx, caller, userID, in.CourseID, dueDate)
		if err != nil {
			logger.Log.Warn("bulk assignment failed",
				zap.String("userId", userID),
				zap.String("courseId", in.CourseID),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, BulkFailure{UserID: userID, Error: err.Error(), Err: err})
			continue
		}
		result.Assignments = append(result.Assignments, *a)
	}
	span.SetAttributes(attribute.Int("bulk.failures", len(result.Failures)))
	return result, nil
}

// List returns assignments matching filter, newest first.
func (s *AssignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]model.CourseAssignment, error) {
	return s.AssignmentRepo.List(ctx, filter)
}

func (s *AssignmentService) checkCourse(ctx context.Context, courseID string) error {
	course, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	if !course.IsActive {
		return util.NewValidationError("courseId", "course is archived")
	}
	return nil
}

func (s *AssignmentService) assignOne(ctx context.Context, caller *access.Caller, userID, courseID string, dueDate *time.Time) (*model.CourseAssignment, error) {
	exists, err := s.UserRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrUserNotFound
	}

	now := s.Now().UTC()
	a := &model.CourseAssignment{
		UserID:           userID,
		CourseID:         courseID,
		DueDate:          dueDate,
		AssignedByUserID: caller.ID,
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.AssignmentRepo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("upsert assignment: %w", err)
	}
	monitoring.AssignmentsUpserted.Inc()

	return s.AssignmentRepo.FindByUserCourse(ctx, userID, courseID)
}
