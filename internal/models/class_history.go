package models

import "time"

// ClassHistoryEntry is one row of a student's placement ledger. Rows are never
// deleted; a placement ends by deactivation.
type ClassHistoryEntry struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	GradeID      string     `db:"grade_id" json:"grade_id"`
	AcademicYear string     `db:"academic_year" json:"academic_year"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	PromotedBy   *string    `db:"promoted_by" json:"promoted_by,omitempty"`
	PromotedAt   *time.Time `db:"promoted_at" json:"promoted_at,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	Synthesized  bool       `db:"-" json:"synthesized,omitempty"`
}

// ClassHistoryView is the read contract for a student's ledger.
type ClassHistoryView struct {
	StudentID string              `json:"student_id"`
	History   []ClassHistoryEntry `json:"history"`
	Repaired  bool                `json:"repaired"`
}

// ReconcileAction enumerates the repairs the ledger planner can request.
type ReconcileAction string

const (
	ReconcileNone      ReconcileAction = "NONE"
	ReconcileCollapse  ReconcileAction = "COLLAPSE"
	ReconcileReinstate ReconcileAction = "REINSTATE"
)

// ReconcilePlan describes how to bring the ledger back in line with the student's placement.
type ReconcilePlan struct {
	Action     ReconcileAction    `json:"action"`
	Deactivate []string           `json:"deactivate,omitempty"`
	Insert     *ClassHistoryEntry `json:"insert,omitempty"`
	At         time.Time          `json:"at"`
}

// NeedsWrite reports whether applying the plan mutates the ledger.
func (p ReconcilePlan) NeedsWrite() bool {
	return p.Action != ReconcileNone
}

// PromotionParams is the transactional input for moving a cohort between classes.
type PromotionParams struct {
	StudentIDs   []string
	FromClassID  string
	ToClassID    string
	ToGradeID    string
	AcademicYear string
	Notes        *string
	PromotedBy   string
	At           time.Time
}

// PromotionResult is returned to callers of a promotion regardless of which path persisted it.
type PromotionResult struct {
	Entries  []ClassHistoryEntry `json:"entries"`
	Fallback bool                `json:"fallback"`
}
