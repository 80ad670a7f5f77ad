package model

// ReportSummary is the admin compliance overview.
// swagger:model ReportSummary
type ReportSummary struct {
	TotalCourses         int          `json:"totalCourses"`
	TotalAssignments     int          `json:"totalAssignments"`
	CompletedAssignments int          `json:"completedAssignments"`
	PendingAssignments   int          `json:"pendingAssignments"`
	OverdueAssignments   int          `json:"overdueAssignments"`
	CompletionRate       float64      `json:"completionRate"`
	CourseStats          []CourseStat `json:"courseStats"`
	UserStats            []UserStat   `json:"userStats"`
}

type CourseStat struct {
	CourseID       string  `json:"courseId"`
	CourseTitle    string  `json:"courseTitle"`
	TotalAssigned  int     `json:"totalAssigned"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

type UserStat struct {
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	UserEmail      string  `json:"userEmail"`
	TotalAssigned  int     `json:"totalAssigned"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

// CompletionRate is completed/total as a percentage, 0 when nothing is assigned.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
