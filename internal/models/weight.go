package models

import "time"

// WeightSource names the layer a resolved weight pair came from.
type WeightSource string

const (
	WeightSourceTermOverride   WeightSource = "TERM_OVERRIDE"
	WeightSourceSubjectDefault WeightSource = "SUBJECT_DEFAULT"
)

// TermWeightOverride replaces a subject's default weights for one term.
type TermWeightOverride struct {
	ID               string    `db:"id" json:"id"`
	SubjectID        string    `db:"subject_id" json:"subject_id"`
	Term             Term      `db:"term" json:"term"`
	AssignmentWeight float64   `db:"assignment_weight" json:"assignment_weight"`
	ExamWeight       float64   `db:"exam_weight" json:"exam_weight"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ResolvedWeights is the effective weight pair for a subject and term.
type ResolvedWeights struct {
	SubjectID        string       `json:"subject_id"`
	Term             Term         `json:"term"`
	AssignmentWeight float64      `json:"assignment_weight"`
	ExamWeight       float64      `json:"exam_weight"`
	Source           WeightSource `json:"source"`
}
