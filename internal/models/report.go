package models

// ApprovalState summarises the gate as seen by the caller of a term report.
type ApprovalState struct {
	IsApproved bool    `json:"is_approved"`
	Pending    bool    `json:"pending"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// SubjectReport is one subject row of a term report.
type SubjectReport struct {
	SubjectID   string          `json:"subject_id"`
	SubjectCode string          `json:"subject_code"`
	SubjectName string          `json:"subject_name"`
	Weights     ResolvedWeights `json:"weights"`
	Score       SubjectScore    `json:"score"`
	Grade       string          `json:"grade"`
	ScaleSource ScaleSource     `json:"scale_source"`
}

// TermReport is the assembled per-student report for a class and term.
type TermReport struct {
	StudentID      string          `json:"student_id"`
	ClassID        string          `json:"class_id"`
	Term           Term            `json:"term"`
	Subjects       []SubjectReport `json:"subjects"`
	OverallAverage *float64        `json:"overall_average,omitempty"`
	OverallGrade   string          `json:"overall_grade"`
	ApprovalState  ApprovalState   `json:"approval_state"`
}
