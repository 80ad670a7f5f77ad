package controller

import (
	"fmt"
	"net/http"

	"training_tracker/internal/service"
	"training_tracker/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// GetSummary godoc
// @Summary Compliance report
// @Description Overall, per-course and per-user completion and overdue counts
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.ReportSummary}
// @Failure 401 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/reports [get]
func (c *ReportController) GetSummary(ctx *gin.Context) {
	summary, err := c.ReportService.Summary(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// ExportCSV godoc
// @Summary Export the training report as CSV
// @Description One row per assignment. Dates use the short form of the Accept-Language locale.
// @Tags reports
// @Produce text/csv
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Failure 401 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/admin/reports/export [get]
func (c *ReportController) ExportCSV(ctx *gin.Context) {
	report, err := c.ReportService.ExportCSV(ctx.Request.Context(), ctx.GetHeader("Accept-Language"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	if report.ArchiveURL != "" {
		ctx.Header("X-Report-Archive", report.ArchiveURL)
	}
	ctx.Data(http.StatusOK, util.MimeCSV, report.Content)
}
