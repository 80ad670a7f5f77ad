package service

import (
	"context"
	"time"

	"training_tracker/internal/config"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/pkg/tracing"
)

type ReportService struct {
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
	AssignmentRepo *repository.AssignmentRepository
	ProgressRepo   *repository.ProgressRepository
	Storage        *StorageService
	Cfg            *config.ReportsConfig
	Now            func() time.Time
}

func NewReportService(
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	assignmentRepo *repository.AssignmentRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
	cfg *config.ReportsConfig,
) *ReportService {
	return &ReportService{
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
		AssignmentRepo: assignmentRepo,
		ProgressRepo:   progressRepo,
		Storage:        storage,
		Cfg:            cfg,
		Now:            time.Now,
	}
}

// Summary aggregates every assignment and progress row into the compliance overview.
func (s *ReportService) Summary(ctx context.Context) (*model.ReportSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "report.summary")
	defer span.End()

	assignments, err := s.AssignmentRepo.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return nil, err
	}
	progresses, err := s.ProgressRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSummary(s.Now(), courses, users, assignments, progresses), nil
}

type pairKey struct {
	userID   string
	courseID string
}

// progressIndex finds the progress row matching an assignment's pair.
type progressIndex map[pairKey]model.ProgressStatus

func indexProgress(progresses []model.CourseProgress) progressIndex {
	idx := make(progressIndex, len(progresses))
	for _, p := range progresses {
		idx[pairKey{p.UserID, p.CourseID}] = p.Status
	}
	return idx
}

// status is empty when the pair has no progress row, which counts as not completed.
func (idx progressIndex) status(a *model.CourseAssignment) model.ProgressStatus {
	return idx[pairKey{a.UserID, a.CourseID}]
}

type tally struct {
	assigned, completed, pending, overdue int
}

func (t *tally) addProgress(status model.ProgressStatus) {
	switch status {
	case model.StatusCompleted:
		t.completed++
	case model.StatusInProgress:
		t.pending++
	}
}

// BuildSummary is the pure part of Summary. Completed and pending counts come
// from progress rows; overdue comes from assignments whose due date is before
// now and whose progress is not COMPLETED.
func BuildSummary(now time.Time, activeCourses []model.Course, users []model.User, assignments []model.CourseAssignment, progresses []model.CourseProgress) *model.ReportSummary {
	idx := indexProgress(progresses)

	var overall tally
	byCourse := make(map[string]*tally)
	byUser := make(map[string]*tally)
	get := func(m map[string]*tally, key string) *tally {
		t, ok := m[key]
		if !ok {
			t = &tally{}
			m[key] = t
		}
		return t
	}

	for i := range assignments {
		a := &assignments[i]
		overall.assigned++
		get(byCourse, a.CourseID).assigned++
		get(byUser, a.UserID).assigned++
		if a.OverdueAt(now, idx.status(a)) {
			overall.overdue++
			get(byCourse, a.CourseID).overdue++
			get(byUser, a.UserID).overdue++
		}
	}
	for _, p := range progresses {
		overall.addProgress(p.Status)
		get(byCourse, p.CourseID).addProgress(p.Status)
		get(byUser, p.UserID).addProgress(p.Status)
	}

	summary := &model.ReportSummary{
		TotalCourses:         len(activeCourses),
		TotalAssignments:     overall.assigned,
		CompletedAssignments: overall.completed,
		PendingAssignments:   overall.pending,
		OverdueAssignments:   overall.overdue,
		CompletionRate:       model.CompletionRate(overall.completed, overall.assigned),
		CourseStats:          make([]model.CourseStat, 0, len(activeCourses)),
		UserStats:            make([]model.UserStat, 0, len(users)),
	}

	for _, c := range activeCourses {
		t := get(byCourse, c.ID)
		summary.CourseStats = append(summary.CourseStats, model.CourseStat{
			CourseID:       c.ID,
			CourseTitle:    c.Title,
			TotalAssigned:  t.assigned,
			Completed:      t.completed,
			Pending:        t.pending,
			Overdue:        t.overdue,
			CompletionRate: model.CompletionRate(t.completed, t.assigned),
		})
	}
	for _, u := range users {
		t := get(byUser, u.ID)
		summary.UserStats = append(summary.UserStats, model.UserStat{
			UserID:         u.ID,
			UserName:       u.Name,
			UserEmail:      u.Email,
			TotalAssigned:  t.assigned,
			Completed:      t.completed,
			Pending:        t.pending,
			Overdue:        t.overdue,
			CompletionRate: model.CompletionRate(t.completed, t.assigned),
		})
	}

	return summary
}
