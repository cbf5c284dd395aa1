package models

import "time"

// GradeCategory separates coursework from examinations.
type GradeCategory string

const (
	CategoryAssignment GradeCategory = "ASSIGNMENT"
	CategoryExam       GradeCategory = "EXAM"
)

// GradedItem is an assignment or exam scoped to one subject, class and term.
type GradedItem struct {
	ID        string        `db:"id" json:"id"`
	SubjectID string        `db:"subject_id" json:"subject_id"`
	ClassID   string        `db:"class_id" json:"class_id"`
	Term      Term          `db:"term" json:"term"`
	Title     string        `db:"title" json:"title"`
	MaxPoints float64       `db:"max_points" json:"max_points"`
	Category  GradeCategory `db:"category" json:"category"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// ResultRecord stores one student's score on one graded item.
type ResultRecord struct {
	GradedItemID string    `db:"graded_item_id" json:"graded_item_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Score        float64   `db:"score" json:"score"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

// GradedItemFilter scopes graded item lookups.
type GradedItemFilter struct {
	SubjectID string
	ClassID   string
	Term      Term
}
