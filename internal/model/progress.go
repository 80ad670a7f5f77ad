package model

import (
	"strings"
	"time"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "NOT_STARTED"
	StatusInProgress ProgressStatus = "IN_PROGRESS"
	StatusCompleted  ProgressStatus = "COMPLETED"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label is the human form used in exports, e.g. "IN PROGRESS".
func (s ProgressStatus) Label() string {
	return strings.Replace(string(s), "_", " ", 1)
}

// CourseProgress is a user's advancement through an assigned course.
// swagger:model CourseProgress
type CourseProgress struct {
	UUIDBase
	UserID      string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID    string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course;index" json:"courseId"`
	Status      ProgressStatus `gorm:"size:16;not null;default:NOT_STARTED" json:"status"`
	StartedAt   *time.Time     `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}
