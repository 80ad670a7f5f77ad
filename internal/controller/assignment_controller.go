package controller

import (
	"training_tracker/internal/middleware"
	"training_tracker/internal/repository"
	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// AssignRequest assigns one user (userId) or several (userIds) to a course.
// swagger:model AssignRequest
type AssignRequest struct {
	UserID   string   `json:"userId"`
	UserIDs  []string `json:"userIds"`
	CourseID string   `json:"courseId"`
	DueDate  string   `json:"dueDate"`
}

// ListAssignments godoc
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Security ApiKeyAuth
// @Param userId query string false "filter by user"
// @Param courseId query string false "filter by course"
// @Success 200 {object} util.Response{data=[]model.CourseAssignment}
// @Failure 401 {object} util.Response
// @Router /api/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	assignments, err := c.AssignmentService.List(ctx.Request.Context(), repository.AssignmentFilter{
		UserID:   ctx.Query("userId"),
		CourseID: ctx.Query("courseId"),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// CreateAssignment godoc
// @Summary Assign a course
// @Description Upserts one assignment, or one per id when userIds is given. Bulk items succeed or fail independently.
// @Tags assignments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body AssignRequest true "assignment"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Invalid(ctx, util.BindingError(err))
		return
	}

	caller := middleware.CallerFrom(ctx)

	if req.UserIDs != nil {
		result, err := c.AssignmentService.AssignBulk(ctx.Request.Context(), caller, service.BulkAssignInput{
			UserIDs:  req.UserIDs,
			CourseID: req.CourseID,
			DueDate:  req.DueDate,
		})
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		if len(result.Assignments) == 0 && len(result.Failures) > 0 {
			util.HandleError(ctx, result.Failures[0].Err)
			return
		}
		util.Created(ctx, result)
		return
	}

	assignment, err := c.AssignmentService.Assign(ctx.Request.Context(), caller, service.AssignInput{
		UserID:   req.UserID,
		CourseID: req.CourseID,
		DueDate:  req.DueDate,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}
