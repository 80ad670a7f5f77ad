package repository

import (
	"context"

	"training_tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindDetail loads the pair's progress with course and user attached.
func (r *ProgressRepository) FindDetail(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	var p model.CourseProgress
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Preload("User").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&p).Error
	return &p, err
}

// Upsert inserts p or, on a (user, course) conflict, rewrites updateColumns.
// started_at is never part of updateColumns: the stored value wins and p's
// value only fills it while it is still NULL, in the same statement.
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.CourseProgress, updateColumns []string) error {
	set := clause.AssignmentColumns(updateColumns)
	set = append(set, clause.Assignment{
		Column: clause.Column{Name: "started_at"},
		Value:  gorm.Expr("COALESCE(" + p.TableName() + ".started_at, " + r.inserted("started_at") + ")"),
	})
	return r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: set,
		}).
		Create(p).Error
}

// inserted refers to the value a conflicting INSERT tried to write.
func (r *ProgressRepository) inserted(column string) string {
	if r.DB.Dialector.Name() == "mysql" {
		return "VALUES(" + column + ")"
	}
	return "excluded." + column
}

// ListByUser returns a user's progress rows, most recently updated first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.CourseProgress, error) {
	var rows []model.CourseProgress
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Preload("User").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListAll(ctx context.Context) ([]model.CourseProgress, error) {
	var rows []model.CourseProgress
	err := r.DB.WithContext(ctx).Find(&rows).Error
	return rows, err
}
