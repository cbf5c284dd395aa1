package ledger

import "github.com/adobah666/edutrack-sub001/internal/models"

// PromotionEntries builds the active ledger entry each promoted student
// receives, in the order of params.StudentIDs.
func PromotionEntries(params models.PromotionParams, newID func() string) []models.ClassHistoryEntry {
	entries := make([]models.ClassHistoryEntry, 0, len(params.StudentIDs))
	for _, studentID := range params.StudentIDs {
		promotedBy := params.PromotedBy
		at := params.At
		entries = append(entries, models.ClassHistoryEntry{
			ID:           newID(),
			StudentID:    studentID,
			ClassID:      params.ToClassID,
			GradeID:      params.ToGradeID,
			AcademicYear: params.AcademicYear,
			IsActive:     true,
			StartDate:    params.At,
			PromotedBy:   &promotedBy,
			PromotedAt:   &at,
			Notes:        params.Notes,
		})
	}
	return entries
}
