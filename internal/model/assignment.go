package model

import "time"

// CourseAssignment records that a user must complete a course. There is at
// most one row per (UserID, CourseID).
// swagger:model CourseAssignment
type CourseAssignment struct {
	UUIDBase
	UserID           string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_user_course" json:"userId"`
	CourseID         string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_user_course;index" json:"courseId"`
	DueDate          *time.Time `json:"dueDate"`
	AssignedByUserID string     `gorm:"type:varchar(36);not null" json:"assignedByUserId"`
	StartedAt        *time.Time `json:"startedAt"`

	User       *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course     *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	AssignedBy *User   `gorm:"foreignKey:AssignedByUserID" json:"assignedBy,omitempty"`
}

func (CourseAssignment) TableName() string {
	return "course_assignments"
}

// OverdueAt reports whether the due date has passed at now for a course that
// is not completed. An assignment without a due date is never overdue.
func (a *CourseAssignment) OverdueAt(now time.Time, status ProgressStatus) bool {
	if a.DueDate == nil {
		return false
	}
	return a.DueDate.Before(now) && status != StatusCompleted
}
