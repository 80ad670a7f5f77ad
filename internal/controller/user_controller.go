package controller

import (
	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController serves the user directory.
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// GetUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 401 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	users, err := c.UserService.GetUsers(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}
