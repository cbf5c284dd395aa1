package models

import "time"

// TermApproval gates visibility of a class's results for one term.
type TermApproval struct {
	ID         string     `db:"id" json:"id,omitempty"`
	ClassID    string     `db:"class_id" json:"class_id"`
	Term       Term       `db:"term" json:"term"`
	IsApproved bool       `db:"is_approved" json:"is_approved"`
	ApprovedBy *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
