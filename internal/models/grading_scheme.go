package models

import "time"

// NotGradedLabel is returned by the grade mapper when a student has no grades.
const NotGradedLabel = "Not Graded"

// ScaleSource names the layer a resolved grading scale came from.
type ScaleSource string

const (
	ScaleSourceSubject       ScaleSource = "SUBJECT"
	ScaleSourceSchoolDefault ScaleSource = "SCHOOL_DEFAULT"
	ScaleSourceBuiltIn       ScaleSource = "BUILT_IN"
)

// GradingScheme is a named table of grade bands.
type GradingScheme struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	IsDefault bool        `db:"is_default" json:"is_default"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
	Bands     []GradeBand `db:"-" json:"bands"`
}

// GradeBand maps an inclusive percentage range to a label.
type GradeBand struct {
	ID            string  `db:"id" json:"id,omitempty"`
	SchemeID      string  `db:"scheme_id" json:"scheme_id,omitempty"`
	Label         string  `db:"label" json:"label"`
	MinPercentage float64 `db:"min_percentage" json:"min_percentage"`
	MaxPercentage float64 `db:"max_percentage" json:"max_percentage"`
	Order         int     `db:"sort_order" json:"order"`
}

// ResolvedScale is the band table used to label a subject's percentage.
type ResolvedScale struct {
	SchemeID string      `json:"scheme_id,omitempty"`
	Bands    []GradeBand `json:"bands"`
	Source   ScaleSource `json:"source"`
}
