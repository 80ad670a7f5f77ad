package controller

import (
	"training_tracker/internal/model"
	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// CreateCourseRequest
// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	Title           string  `json:"title" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	SkillLevel      string  `json:"skillLevel" binding:"required"`
	Mandatory       bool    `json:"mandatory"`
	ResourceType    string  `json:"resourceType" binding:"required,oneof=VIDEO PDF QUIZ OTHER"`
	ResourceName    *string `json:"resourceName"`
	DurationMinutes *int    `json:"durationMinutes" binding:"omitempty,min=0"`
	URL             *string `json:"url" binding:"omitempty,url"`
}

// UpdateCourseRequest carries only the fields to change.
// swagger:model UpdateCourseRequest
type UpdateCourseRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1"`
	Category        *string `json:"category" binding:"omitempty,min=1"`
	SkillLevel      *string `json:"skillLevel" binding:"omitempty,min=1"`
	Mandatory       *bool   `json:"mandatory"`
	ResourceType    *string `json:"resourceType" binding:"omitempty,oneof=VIDEO PDF QUIZ OTHER"`
	ResourceName    *string `json:"resourceName"`
	DurationMinutes *int    `json:"durationMinutes" binding:"omitempty,min=0"`
	URL             *string `json:"url" binding:"omitempty,url"`
	IsActive        *bool   `json:"isActive"`
}

// ListCourses godoc
// @Summary List active courses
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Failure 401 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateCourseRequest true "course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Invalid(ctx, util.BindingError(err))
		return
	}

	course, err := c.CourseService.Create(ctx.Request.Context(), service.CourseInput{
		Title:           req.Title,
		Category:        req.Category,
		SkillLevel:      req.SkillLevel,
		Mandatory:       req.Mandatory,
		ResourceType:    model.ResourceType(req.ResourceType),
		ResourceName:    req.ResourceName,
		DurationMinutes: req.DurationMinutes,
		URL:             req.URL,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// GetCourse godoc
// @Summary Get a course with its assignments and progress
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "course id"
// @Param body body UpdateCourseRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Invalid(ctx, util.BindingError(err))
		return
	}

	patch := service.CoursePatch{
		Title:           req.Title,
		Category:        req.Category,
		SkillLevel:      req.SkillLevel,
		Mandatory:       req.Mandatory,
		ResourceName:    req.ResourceName,
		DurationMinutes: req.DurationMinutes,
		URL:             req.URL,
		IsActive:        req.IsActive,
	}
	if req.ResourceType != nil {
		rt := model.ResourceType(*req.ResourceType)
		patch.ResourceType = &rt
	}

	course, err := c.CourseService.Update(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// ArchiveCourse godoc
// @Summary Archive a course
// @Description Hides the course from listings; assignments and progress are kept
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "course id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) ArchiveCourse(ctx *gin.Context) {
	if err := c.CourseService.Archive(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Course archived"})
}
