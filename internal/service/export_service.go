package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
	"github.com/adobah666/edutrack-sub001/pkg/export"
)

type termReportSource interface {
	GetTermReport(ctx context.Context, req models.TermReportRequest, caller models.Caller) (*models.TermReport, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportService renders term reports as downloadable files.
type ExportService struct {
	reports termReportSource
	csv     documentRenderer
	pdf     documentRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports termReportSource, logger *zap.Logger, csv, pdf documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{reports: reports, csv: csv, pdf: pdf, logger: logger}
}

// ExportTermReport renders the same report GetTermReport returns for the caller.
func (s *ExportService) ExportTermReport(ctx context.Context, req models.TermReportRequest, rawFormat string, caller models.Caller) (*models.ExportedReport, error) {
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if format == "" {
		format = models.ReportFormatPDF
	}
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	report, err := s.reports.GetTermReport(ctx, req, caller)
	if err != nil {
		return nil, err
	}

	doc := buildReportDocument(report)
	var payload []byte
	contentType := "text/csv"
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(doc)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(doc)
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("failed to render term report", zap.String("student_id", report.StudentID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render report")
	}

	return &models.ExportedReport{
		Filename:    fmt.Sprintf("term-report-%s-%s.%s", report.StudentID, strings.ToLower(string(report.Term)), format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func buildReportDocument(report *models.TermReport) export.Document {
	table := export.Dataset{Headers: []string{"Code", "Subject", "Assignment %", "Exam %", "Final %", "Grade", "Weights", "Partial"}}
	for _, row := range report.Subjects {
		partial := ""
		if row.Score.IsPartial {
			partial = "yes"
		}
		table.AddRow(
			row.SubjectCode,
			row.SubjectName,
			fmt.Sprintf("%.2f", row.Score.AssignmentAverage),
			fmt.Sprintf("%.2f", row.Score.ExamAverage),
			fmt.Sprintf("%.2f", row.Score.FinalPercentage),
			row.Grade,
			fmt.Sprintf("%.2f/%.2f", row.Weights.AssignmentWeight, row.Weights.ExamWeight),
			partial,
		)
	}

	summary := []string{
		fmt.Sprintf("Student: %s", report.StudentID),
		fmt.Sprintf("Class: %s  Term: %s", report.ClassID, report.Term),
	}
	switch {
	case report.ApprovalState.Pending && len(report.Subjects) == 0:
		summary = append(summary, "Results pending approval")
	case report.OverallAverage != nil:
		summary = append(summary, fmt.Sprintf("Overall: %.2f (%s)", *report.OverallAverage, report.OverallGrade))
	default:
		summary = append(summary, "Overall: "+report.OverallGrade)
	}

	return export.Document{Title: "Term report", Summary: summary, Table: table}
}
