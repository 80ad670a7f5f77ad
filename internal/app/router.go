package app

import (
	"training_tracker/docs"
	"training_tracker/internal/access"
	"training_tracker/internal/middleware"
	"training_tracker/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/signin", c.auth.SignIn)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth))
	{
		a.registerEmployeeRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerEmployeeRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/auth/signout", c.auth.SignOut)
	rg.GET("/auth/me", c.auth.Me)

	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)

	rg.GET("/assignments", c.assignment.ListAssignments)

	// reading another user's progress is checked in the service
	rg.GET("/progress", c.progress.ListProgress)
	rg.POST("/progress", c.progress.RecordProgress)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.Require(access.Admin))
	{
		admin.POST("/courses", c.course.CreateCourse)
		admin.PUT("/courses/:id", c.course.UpdateCourse)
		admin.DELETE("/courses/:id", c.course.ArchiveCourse)

		admin.POST("/assignments", c.assignment.CreateAssignment)

		admin.GET("/users", c.user.GetUsers)

		admin.GET("/admin/reports", c.report.GetSummary)
		admin.GET("/admin/reports/export", c.report.ExportCSV)
	}
}
