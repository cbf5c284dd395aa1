package models

// SubjectScore is the aggregated result of one student in one subject for a term.
type SubjectScore struct {
	AssignmentAverage  float64     `json:"assignment_average"`
	ExamAverage        float64     `json:"exam_average"`
	FinalPercentage    float64     `json:"final_percentage"`
	ContributingWeight float64     `json:"contributing_weight"`
	HasAnyGrades       bool        `json:"has_any_grades"`
	IsPartial          bool        `json:"is_partial"`
	Counts             ScoreCounts `json:"counts"`
}

// ScoreCounts records how many items exist and how many were graded per category.
type ScoreCounts struct {
	AssignmentItems  int `json:"assignment_items"`
	AssignmentGraded int `json:"assignment_graded"`
	ExamItems        int `json:"exam_items"`
	ExamGraded       int `json:"exam_graded"`
}
