package controller

import (
	"training_tracker/internal/middleware"
	"training_tracker/internal/model"
	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Status   string `json:"status" binding:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
}

// ListProgress godoc
// @Summary List progress
// @Description Progress of userId (default: the caller). Only admins may read other users.
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param userId query string false "user id"
// @Success 200 {object} util.Response{data=[]model.CourseProgress}
// @Failure 401 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	rows, err := c.ProgressService.List(ctx.Request.Context(), middleware.CallerFrom(ctx), ctx.Query("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// RecordProgress godoc
// @Summary Record progress on an assigned course
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateProgressRequest true "progress"
// @Success 201 {object} util.Response{data=model.CourseProgress}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "course not assigned to user"
// @Router /api/progress [post]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Invalid(ctx, util.BindingError(err))
		return
	}

	progress, err := c.ProgressService.RecordProgress(ctx.Request.Context(), middleware.CallerFrom(ctx), req.CourseID, model.ProgressStatus(req.Status))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, progress)
}
