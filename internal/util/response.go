package util

import (
	"errors"
	"net/http"

	"training_tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the JSON envelope of every API reply. Error names the failure category; Details lists
// offending fields for validation failures.
type Response struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   http.StatusText(code),
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func Invalid(c *gin.Context, v *ValidationError) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: "Invalid data",
		Error:   http.StatusText(http.StatusBadRequest),
		Details: v.Fields,
	})
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// HandleError maps a service error onto the error taxonomy. Anything
// unrecognised is logged and answered with a generic 500.
func HandleError(c *gin.Context, err error) {
	var v *ValidationError
	switch {
	case errors.As(err, &v):
		Invalid(c, v)
	case errors.Is(err, ErrUnauthorized):
		Unauthorized(c)
	case errors.Is(err, ErrNotAssigned):
		Error(c, http.StatusForbidden, "Course not assigned to user")
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrDevLoginDisable):
		Forbidden(c)
	case errors.Is(err, ErrCourseNotFound):
		Error(c, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrNotFound):
		NotFound(c)
	default:
		LogInternalError(c, err)
	}
}
