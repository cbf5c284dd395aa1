package models

// TermReportRequest selects the report for one student, class and term. An
// empty ClassID means the student's current class.
type TermReportRequest struct {
	StudentID string `validate:"required"`
	ClassID   string
	Term      string `validate:"required"`
}

// SetTermWeightRequest carries a per-term weight override.
type SetTermWeightRequest struct {
	SubjectID        string   `json:"-" validate:"required"`
	Term             string   `json:"-" validate:"required"`
	AssignmentWeight *float64 `json:"assignment_weight" validate:"required"`
	ExamWeight       *float64 `json:"exam_weight" validate:"required"`
}

// ToggleApprovalRequest sets the approval state of a class for a term.
type ToggleApprovalRequest struct {
	ClassID    string  `json:"-" validate:"required"`
	Term       string  `json:"-" validate:"required"`
	IsApproved *bool   `json:"is_approved" validate:"required"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

// PromoteStudentsRequest moves a cohort from one class to another.
type PromoteStudentsRequest struct {
	StudentIDs   []string `json:"student_ids" validate:"required,min=1,unique,dive,required"`
	FromClassID  string   `json:"from_class_id" validate:"required"`
	ToClassID    string   `json:"to_class_id" validate:"required,nefield=FromClassID"`
	AcademicYear string   `json:"academic_year" validate:"required,academic_year"`
	Notes        *string  `json:"notes" validate:"omitempty,max=1000"`
}

// ReportFormat enumerates export encodings for term reports.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ExportedReport is a rendered term report ready to stream.
type ExportedReport struct {
	Filename    string
	ContentType string
	Data        []byte
}
