package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"training_tracker/internal/config"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"
	"training_tracker/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseInput carries a create request. Optional fields are nil when absent.
type CourseInput struct {
	Title           string
	Category        string
	SkillLevel      string
	Mandatory       bool
	ResourceType    model.ResourceType
	ResourceName    *string
	DurationMinutes *int
	URL             *string
}

// CoursePatch carries a partial update; nil fields are left untouched.
type CoursePatch struct {
	Title           *string
	Category        *string
	SkillLevel      *string
	Mandatory       *bool
	ResourceType    *model.ResourceType
	ResourceName    *string
	DurationMinutes *int
	URL             *string
	IsActive        *bool
}

type CourseService struct {
	CourseRepo *repository.CourseRepository
	Cfg        *config.CoursesConfig
	// ProbeDuration measures media length in minutes; util.ProbeDurationMinutes by default.
	ProbeDuration func(source string) (int, error)
	Now           func() time.Time
}

func NewCourseService(courseRepo *repository.CourseRepository, cfg *config.CoursesConfig) *CourseService {
	return &CourseService{
		CourseRepo:    courseRepo,
		Cfg:           cfg,
		ProbeDuration: util.ProbeDurationMinutes,
		Now:           time.Now,
	}
}

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.ListActive(ctx)
}

// Get returns the course with its assignments and progress rows, archived or not.
func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, in CourseInput) (*model.Course, error) {
	v := &util.ValidationError{}
	requireText(v, "title", in.Title)
	requireText(v, "category", in.Category)
	requireText(v, "skillLevel", in.SkillLevel)
	if !in.ResourceType.Valid() {
		v.Add("resourceType", "must be one of VIDEO PDF QUIZ OTHER")
	}
	checkOptional(v, in.DurationMinutes, in.URL)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	course := &model.Course{
		Title:           strings.TrimSpace(in.Title),
		Category:        strings.TrimSpace(in.Category),
		SkillLevel:      strings.TrimSpace(in.SkillLevel),
		Mandatory:       in.Mandatory,
		ResourceType:    in.ResourceType,
		ResourceName:    in.ResourceName,
		DurationMinutes: in.DurationMinutes,
		URL:             in.URL,
		IsActive:        true,
	}
	course.CreatedAt = now
	course.UpdatedAt = now

	s.fillVideoDuration(course)

	if err := s.CourseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Update applies a partial change and returns the stored course.
func (s *CourseService) Update(ctx context.Context, id string, patch CoursePatch) (*model.Course, error) {
	v := &util.ValidationError{}
	columns := map[string]interface{}{}

	if patch.Title != nil {
		requireText(v, "title", *patch.Title)
		columns["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Category != nil {
		requireText(v, "category", *patch.Category)
		columns["category"] = strings.TrimSpace(*patch.Category)
	}
	if patch.SkillLevel != nil {
		requireText(v, "skillLevel", *patch.SkillLevel)
		columns["skill_level"] = strings.TrimSpace(*patch.SkillLevel)
	}
	if patch.ResourceType != nil {
		if !patch.ResourceType.Valid() {
			v.Add("resourceType", "must be one of VIDEO PDF QUIZ OTHER")
		}
		columns["resource_type"] = *patch.ResourceType
	}
	checkOptional(v, patch.DurationMinutes, patch.URL)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if patch.Mandatory != nil {
		columns["mandatory"] = *patch.Mandatory
	}
	if patch.ResourceName != nil {
		columns["resource_name"] = *patch.ResourceName
	}
	if patch.DurationMinutes != nil {
		columns["duration_minutes"] = *patch.DurationMinutes
	}
	if patch.URL != nil {
		columns["url"] = *patch.URL
	}
	if patch.IsActive != nil {
		columns["is_active"] = *patch.IsActive
	}

	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		columns["updated_at"] = s.Now().UTC()
		if _, err := s.CourseRepo.Updates(ctx, id, columns); err != nil {
			return nil, err
		}
	}
	return s.mustFind(ctx, id)
}

// Archive hides the course from listings. Assignments and progress stay.
func (s *CourseService) Archive(ctx context.Context, id string) error {
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	_, err := s.CourseRepo.Updates(ctx, id, map[string]interface{}{
		"is_active":  false,
		"updated_at": s.Now().UTC(),
	})
	return err
}

func (s *CourseService) mustFind(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// fillVideoDuration probes VIDEO courses that were created without a duration.
// A failed probe leaves the duration empty.
func (s *CourseService) fillVideoDuration(course *model.Course) {
	if s.Cfg == nil || !s.Cfg.ProbeVideoDuration || s.ProbeDuration == nil {
		return
	}
	if course.ResourceType != model.ResourceVideo || course.DurationMinutes != nil || course.URL == nil {
		return
	}
	minutes, err := s.ProbeDuration(*course.URL)
	if err != nil {
		logger.Log.Warn("video duration probe failed", zap.String("url", *course.URL), zap.Error(err))
		return
	}
	course.DurationMinutes = &minutes
}

func requireText(v *util.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func checkOptional(v *util.ValidationError, duration *int, rawURL *string) {
	if duration != nil && *duration < 0 {
		v.Add("durationMinutes", "must not be negative")
	}
	if rawURL != nil && *rawURL != "" {
		u, err := url.ParseRequestURI(*rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			v.Add("url", "must be a valid URL")
		}
	}
}
