package controller

import (
	"training_tracker/internal/middleware"
	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// SignInRequest is the development credentials form.
// swagger:model SignInRequest
type SignInRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignIn godoc
// @Summary Development sign-in
// @Description Signs in by email, creating the user on first sign-in, and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignInRequest true "credentials"
// @Success 200 {object} util.Response{data=service.SignInResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "development sign-in disabled"
// @Router /api/auth/signin [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Invalid(ctx, util.BindingError(err))
		return
	}

	result, err := c.AuthService.SignIn(ctx.Request.Context(), req.Email, req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SignOut godoc
// @Summary Sign out
// @Description Revokes the current session token
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/auth/signout [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	if err := c.AuthService.SignOut(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Signed out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, err := c.AuthService.Me(ctx.Request.Context(), middleware.CallerFrom(ctx).ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
