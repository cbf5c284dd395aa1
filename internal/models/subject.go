package models

import "time"

// Subject represents an academic subject together with its default category weights.
type Subject struct {
	ID                      string    `db:"id" json:"id"`
	Code                    string    `db:"code" json:"code"`
	Name                    string    `db:"name" json:"name"`
	DefaultAssignmentWeight float64   `db:"default_assignment_weight" json:"default_assignment_weight"`
	DefaultExamWeight       float64   `db:"default_exam_weight" json:"default_exam_weight"`
	GradingSchemeID         *string   `db:"grading_scheme_id" json:"grading_scheme_id,omitempty"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}
