package repository

import (
	"context"

	"training_tracker/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, "id = ?", id).Error
	return &course, err
}

// FindDetail loads a course with its assignments and progress rows, each with its user.
func (r *CourseRepository) FindDetail(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Assignments.User").
		Preload("Progresses", func(db *gorm.DB) *gorm.DB { return db.Order("updated_at DESC") }).
		Preload("Progresses.User").
		First(&course, "id = ?", id).Error
	return &course, err
}

// ListActive returns non-archived courses, newest first.
func (r *CourseRepository) ListActive(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// Updates applies the given columns. Map keys are column names so false and
// zero values are written too.
func (r *CourseRepository) Updates(ctx context.Context, id string, columns map[string]interface{}) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}
