package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

type termReportService interface {
	GetTermReport(ctx context.Context, req models.TermReportRequest, caller models.Caller) (*models.TermReport, error)
}

type termReportExporter interface {
	ExportTermReport(ctx context.Context, req models.TermReportRequest, rawFormat string, caller models.Caller) (*models.ExportedReport, error)
}

// ReportHandler exposes term report endpoints.
type ReportHandler struct {
	reports termReportService
	exports termReportExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports termReportService, exports termReportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// TermReport godoc
// @Summary Student term report
// @Description Weighted subject scores and grades. Non-staff callers receive an empty pending report until the class/term is approved.
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term (FIRST, SECOND, THIRD, FINAL)"
// @Param classId query string false "Class ID (defaults to the current class)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/term-report [get]
func (h *ReportHandler) TermReport(c *gin.Context) {
	req, valid := termReportRequest(c)
	if !valid {
		return
	}
	report, err := h.reports.GetTermReport(c.Request.Context(), req, middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "approval_pending", report.ApprovalState.Pending)
	respond(c, http.StatusOK, report)
}

// ExportTermReport godoc
// @Summary Download a student term report
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param term query string true "Term (FIRST, SECOND, THIRD, FINAL)"
// @Param classId query string false "Class ID (defaults to the current class)"
// @Param format query string false "csv or pdf (default pdf)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/term-report/export [get]
func (h *ReportHandler) ExportTermReport(c *gin.Context) {
	req, valid := termReportRequest(c)
	if !valid {
		return
	}
	file, err := h.exports.ExportTermReport(c.Request.Context(), req, c.Query("format"), middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func termReportRequest(c *gin.Context) (models.TermReportRequest, bool) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return models.TermReportRequest{}, false
	}
	return models.TermReportRequest{StudentID: c.Param("id"), ClassID: c.Query("classId"), Term: term}, true
}
