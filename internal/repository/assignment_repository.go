package repository

import (
	"context"
	"time"

	"training_tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentFilter struct {
	UserID   string
	CourseID string
}

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Upsert inserts the assignment or, when the (user, course) pair already
// exists, only rewrites its due date. The composite unique index makes this a
// single atomic statement. The caller must re-read the row: on conflict the
// struct's ID is not the stored one.
func (r *AssignmentRepository) Upsert(ctx context.Context, a *model.CourseAssignment) error {
	return r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"due_date", "updated_at"}),
		}).
		Create(a).Error
}

func (r *AssignmentRepository) withDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Course").Preload("AssignedBy")
}

func (r *AssignmentRepository) FindByUserCourse(ctx context.Context, userID, courseID string) (*model.CourseAssignment, error) {
	var a model.CourseAssignment
	err := r.withDetail(r.DB.WithContext(ctx)).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&a).Error
	return &a, err
}

// List returns matching assignments, newest first.
func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]model.CourseAssignment, error) {
	query := r.withDetail(r.DB.WithContext(ctx))
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}

	var assignments []model.CourseAssignment
	err := query.Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

// MarkStarted stamps started_at on the pair's assignment unless already set.
func (r *AssignmentRepository) MarkStarted(ctx context.Context, userID, courseID string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.CourseAssignment{}).
		Where("user_id = ? AND course_id = ? AND started_at IS NULL", userID, courseID).
		UpdateColumn("started_at", at).Error
}
