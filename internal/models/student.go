package models

import "time"

// Student is a learner together with the authoritative current placement.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	ClassID   *string   `db:"class_id" json:"class_id,omitempty"`
	GradeID   *string   `db:"grade_id" json:"grade_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CurrentClassID returns the placement class or an empty string when unplaced.
func (s Student) CurrentClassID() string {
	if s.ClassID == nil {
		return ""
	}
	return *s.ClassID
}

// CurrentGradeID returns the placement grade or an empty string when unplaced.
func (s Student) CurrentGradeID() string {
	if s.GradeID == nil {
		return ""
	}
	return *s.GradeID
}
