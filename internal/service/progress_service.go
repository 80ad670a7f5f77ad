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

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	AssignmentRepo *repository.AssignmentRepository
	Now            func() time.Time
}

func NewProgressService(progressRepo *repository.ProgressRepository, assignmentRepo *repository.AssignmentRepository) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		AssignmentRepo: assignmentRepo,
		Now:            time.Now,
	}
}

// RecordProgress sets the caller's status on an assigned course. StartedAt is
// stamped on the first IN_PROGRESS or COMPLETED and never moved afterwards,
// even when two first updates race; CompletedAt is stamped on every COMPLETED.
func (s *ProgressService) RecordProgress(ctx context.Context, caller *access.Caller, courseID string, status model.ProgressStatus) (*model.CourseProgress, error) {
	if err := access.Check(caller, access.Authenticated); err != nil {
		return nil, err
	}

	v := &util.ValidationError{}
	if strings.TrimSpace(courseID) == "" {
		v.Add("courseId", "is required")
	}
	if !status.Valid() {
		v.Add("status", "must be one of NOT_STARTED IN_PROGRESS COMPLETED")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.AssignmentRepo.FindByUserCourse(ctx, caller.ID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotAssigned
		}
		return nil, err
	}

	now := s.Now().UTC()
	p := &model.CourseProgress{
		UserID:   caller.ID,
		CourseID: courseID,
		Status:   status,
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	columns := []string{"status", "updated_at"}
	switch status {
	case model.StatusInProgress:
		p.StartedAt = &now
	case model.StatusCompleted:
		p.StartedAt = &now
		p.CompletedAt = &now
		columns = append(columns, "completed_at")
	}

	if err := s.ProgressRepo.Upsert(ctx, p, columns); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	monitoring.ProgressUpdates.WithLabelValues(string(status)).Inc()

	saved, err := s.ProgressRepo.FindDetail(ctx, caller.ID, courseID)
	if err != nil {
		return nil, err
	}
	if p.StartedAt != nil && saved.StartedAt != nil {
		if err := s.AssignmentRepo.MarkStarted(ctx, caller.ID, courseID, *saved.StartedAt); err != nil {
			logger.Log.Warn("failed to stamp assignment start",
				zap.String("userId", caller.ID),
				zap.String("courseId", courseID),
				zap.Error(err),
			)
		}
	}
	return saved, nil
}

// List returns progress rows of targetUserID (the caller when empty).
// Only admins may read someone else's progress.
func (s *ProgressService) List(ctx context.Context, caller *access.Caller, targetUserID string) ([]model.CourseProgress, error) {
	if err := access.Check(caller, access.Authenticated); err != nil {
		return nil, err
	}
	if targetUserID == "" {
		targetUserID = caller.ID
	}
	if err := access.CheckSelfOrAdmin(caller, targetUserID); err != nil {
		return nil, err
	}
	return s.ProgressRepo.ListByUser(ctx, targetUserID)
}
